package sweep

import (
	"time"

	"github.com/joshp123/alexasweep/internal/alexa"
)

// Deletion records the outcome of one delete call. Accepted means the
// API returned 2xx, which is weaker than it sounds: the account may
// still list the device afterwards.
type Deletion struct {
	Device   alexa.Device `json:"device"`
	Status   int          `json:"status,omitempty"`
	Accepted bool         `json:"accepted"`
	DryRun   bool         `json:"dryRun,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Report summarizes one sweep run. It lives for the duration of the
// process only; snapshots aside, nothing is persisted across runs.
type Report struct {
	Host       string     `json:"host"`
	Filter     string     `json:"filter,omitempty"`
	DryRun     bool       `json:"dryRun,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt time.Time  `json:"finishedAt"`
	Enumerated int        `json:"enumerated"`
	Matched    int        `json:"matched"`
	Attempted  int        `json:"attempted"`
	Accepted   int        `json:"accepted"`
	Rejected   int        `json:"rejected"`
	Deletions  []Deletion `json:"deletions"`
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
