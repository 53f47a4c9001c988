package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stream message fields carrying an event
const (
	FieldType = "event_type"
	FieldData = "event_data"
)

var (
	ErrMalformedEvent   = errors.New("malformed event message")
	ErrUnknownEventType = errors.New("unknown event type")
)

type Event interface {
	EventType() string
	EventValue() ([]byte, error)
}

// decoders maps an event type to a constructor of its zero value
var decoders = map[string]func() Event{
	RefreshEventType: func() Event { return &RefreshEvent{} },
}

// DefaultEventValue provides a common implementation for EventValue
func DefaultEventValue(event interface{}) ([]byte, error) {
	return json.Marshal(event)
}

// Fields encodes an event as stream message values
func Fields(e Event) (map[string]interface{}, error) {
	data, err := e.EventValue()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", e.EventType(), err)
	}
	return map[string]interface{}{
		FieldType: e.EventType(),
		FieldData: string(data),
	}, nil
}

// Decode restores the event carried by stream message values. The error
// wraps ErrMalformedEvent or ErrUnknownEventType when the message can never
// be processed.
func Decode(values map[string]interface{}) (Event, error) {
	eventType, ok := values[FieldType].(string)
	if !ok || eventType == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedEvent, FieldType)
	}

	newEvent, ok := decoders[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}

	data, ok := values[FieldData].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedEvent, FieldData)
	}

	e := newEvent()
	if err := json.Unmarshal([]byte(data), e); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformedEvent, eventType, err)
	}
	return e, nil
}
