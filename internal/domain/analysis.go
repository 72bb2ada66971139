package domain

import "time"

// AnalysisStatus is the lifecycle of one analysis request.
//
// StatusNotFound is a poll-time answer for unknown ids; it is never stored.
type AnalysisStatus string

const (
	StatusIngesting AnalysisStatus = "ingesting"
	StatusStarting  AnalysisStatus = "starting"
	StatusAnalyzing AnalysisStatus = "analyzing"
	StatusCompleted AnalysisStatus = "completed"
	StatusError     AnalysisStatus = "error"
	StatusNotFound  AnalysisStatus = "not_found"
)

// Terminal reports whether no further transitions are expected.
func (s AnalysisStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// RemoteHandle references an in-flight workflow on the compute cluster.
type RemoteHandle struct {
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
}

// AnalysisJob is the registry entry for one analysis request. The registry
// is process-lifetime state unless a shared backend is configured; a new
// request for the same analysis id overwrites the previous entry.
type AnalysisJob struct {
	AnalysisID string         `json:"analysis_id"`
	ChannelID  string         `json:"channel_id"`
	Status     AnalysisStatus `json:"status"`
	Progress   float64        `json:"progress"`
	Message    string         `json:"message"`
	Handle     *RemoteHandle  `json:"handle,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
