package event

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewRefreshEvent(t *testing.T) {
	e := NewRefreshEvent("webhook")

	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID = %q is not a uuid: %v", e.ID, err)
	}
	if e.Reason != "webhook" {
		t.Errorf("Reason = %q, want webhook", e.Reason)
	}
	if e.RequestedAt.IsZero() {
		t.Error("RequestedAt not set")
	}
	if e.EventType() != RefreshEventType {
		t.Errorf("EventType() = %q, want %q", e.EventType(), RefreshEventType)
	}
	if other := NewRefreshEvent("webhook"); other.ID == e.ID {
		t.Error("two events share an ID")
	}
}

func TestDecodeRefreshEvent(t *testing.T) {
	e := NewRefreshEvent("webhook")
	e.FullSlug = "brands/toyota/corolla"
	e.Action = "published"

	values, err := Fields(e)
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if values[FieldType] != RefreshEventType {
		t.Errorf("%s = %v, want %s", FieldType, values[FieldType], RefreshEventType)
	}

	decoded, err := Decode(values)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := decoded.(*RefreshEvent)
	if !ok {
		t.Fatalf("Decode() = %T, want *RefreshEvent", decoded)
	}
	if got.ID != e.ID || got.FullSlug != e.FullSlug || got.Action != e.Action || !got.RequestedAt.Equal(e.RequestedAt) {
		t.Errorf("Decode() = %+v, want %+v", got, e)
	}
}

func TestDecodeRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		want   error
	}{
		{"missing type", map[string]interface{}{FieldData: "{}"}, ErrMalformedEvent},
		{"non-string type", map[string]interface{}{FieldType: 7, FieldData: "{}"}, ErrMalformedEvent},
		{"unknown type", map[string]interface{}{FieldType: "PriceChanged", FieldData: "{}"}, ErrUnknownEventType},
		{"missing data", map[string]interface{}{FieldType: RefreshEventType}, ErrMalformedEvent},
		{"not json", map[string]interface{}{FieldType: RefreshEventType, FieldData: "not json"}, ErrMalformedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.values)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("Decode() = %+v, want nil", got)
			}
		})
	}
}
