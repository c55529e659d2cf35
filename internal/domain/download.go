package domain

import "time"

type DownloadStatus string

const (
	StatusRunning   DownloadStatus = "running"
	StatusCompleted DownloadStatus = "completed"
	StatusFailed    DownloadStatus = "failed"
)

// DownloadRecord is the history entry kept for one download invocation.
type DownloadRecord struct {
	ID       string         `json:"id"`
	URL      string         `json:"url"`
	Endpoint Endpoint       `json:"endpoint"`
	Output   string         `json:"output"`
	Status   DownloadStatus `json:"status"`

	// DeclaredLength is the Content-Length of the first response, -1 if unknown.
	DeclaredLength int64  `json:"declared_length"`
	BytesReceived  int64  `json:"bytes_received"`
	Requests       int    `json:"requests"`
	SHA256         string `json:"sha256,omitempty"`
	Error          string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewDownloadRecord starts a running record for url.
func NewDownloadRecord(url, output string) *DownloadRecord {
	return &DownloadRecord{
		ID:             NewDownloadID(),
		URL:            url,
		Endpoint:       ParseEndpoint(url),
		Output:         output,
		Status:         StatusRunning,
		DeclaredLength: -1,
		StartedAt:      time.Now(),
	}
}

// Complete marks the record finished successfully.
func (r *DownloadRecord) Complete(received int64, requests int, sha string) {
	r.Status = StatusCompleted
	r.BytesReceived = received
	r.Requests = requests
	r.SHA256 = sha
	r.Error = ""
	r.FinishedAt = time.Now()
}

// Fail marks the record failed with err.
func (r *DownloadRecord) Fail(err error) {
	r.Status = StatusFailed
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = time.Now()
}

// Duration is how long the download ran, zero while still running.
func (r *DownloadRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
