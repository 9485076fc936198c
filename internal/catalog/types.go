package catalog

import "time"

// JobStatus represents the current status of a fetch job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the status is a final state
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CatalogFrame describes the latest remote capture known to the catalog
type CatalogFrame struct {
	ScanTime  time.Time `json:"scan_time"`
	SizeBytes int64     `json:"size"`
	Key       string    `json:"key"`
	Satellite string    `json:"satellite"`
	Sector    string    `json:"sector"`
	Band      string    `json:"band"`
}

// LocalFrame describes the last frame materialized into local storage
type LocalFrame struct {
	CaptureTime time.Time `json:"capture_time"`
	Satellite   string    `json:"satellite"`
	Sector      string    `json:"sector"`
	Band        string    `json:"band"`
	Key         string    `json:"key,omitempty"`
	SizeBytes   int64     `json:"size,omitempty"`
}

// FetchJob represents an asynchronous backend download task
type FetchJob struct {
	ID            string    `json:"id"`
	Status        JobStatus `json:"status"`
	Progress      int       `json:"progress"` // 0-100
	StatusMessage string    `json:"status_message"`
}

// FetchRequest is the payload for starting a fetch job
type FetchRequest struct {
	Satellite string    `json:"satellite"`
	Sector    string    `json:"sector"`
	Band      string    `json:"band"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
