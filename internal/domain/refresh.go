package domain

import "time"

// RefreshStatus records the outcome of the last catalog refresh
type RefreshStatus struct {
	EventID  string        `json:"event_id"`
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Brands   int           `json:"brands"`
	Models   int           `json:"models"`
	Error    string        `json:"error,omitempty"`
}
