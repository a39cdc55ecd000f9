package models

import "time"

// Exchange is one logged question/answer pair. The transcript log is an
// audit trail only; user profiles are never persisted.
type Exchange struct {
	ID        string    `json:"id"`
	Intent    string    `json:"intent"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
