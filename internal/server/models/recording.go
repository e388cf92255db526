package models

import "time"

// Recording statuses.
const (
	RecordingPending = "pending"
	RecordingReady   = "ready"
)

// Recording is a captured avatar session stored in object storage.
type Recording struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SessionID   *string   `json:"session_id"`
	Status      string    `json:"status"`
	DurationMS  *int64    `json:"duration_ms"`
	SizeBytes   *int64    `json:"size_bytes"`
	StorageKey  *string   `json:"storage_key"`
	SummaryText *string   `json:"summary_text,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Export is a queued hand-off of a recording to an external target.
type Export struct {
	ID          int64     `json:"id"`
	RecordingID int64     `json:"recording_id"`
	Target      string    `json:"target"`
	Status      string    `json:"status"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}
