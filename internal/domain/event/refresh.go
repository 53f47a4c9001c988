package event

import (
	"time"

	"github.com/google/uuid"
)

const RefreshEventType = "RefreshEvent"

// RefreshEvent asks every watcher to reload the catalog tree
type RefreshEvent struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`              // "manual", "webhook", ...
	FullSlug    string    `json:"full_slug,omitempty"` // entry that changed, if known
	Action      string    `json:"action,omitempty"`    // "published", "unpublished", "deleted"
	RequestedAt time.Time `json:"requested_at"`
}

func NewRefreshEvent(reason string) *RefreshEvent {
	return &RefreshEvent{
		ID:          uuid.NewString(),
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

func (e *RefreshEvent) EventType() string {
	return RefreshEventType
}

func (e *RefreshEvent) EventValue() ([]byte, error) {
	return DefaultEventValue(e)
}
