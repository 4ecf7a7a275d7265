package autoload

import (
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of one scanned entry.
type Status int

const (
	// StatusBound: the module handler was mounted.
	StatusBound Status = iota

	// StatusFallback: a 500 fallback was mounted.
	StatusFallback

	// StatusSkipped: the entry is not a domain directory. Nothing mounted.
	StatusSkipped

	// StatusFailed: the bind was rejected before mounting.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusBound:
		return "bound"
	case StatusFallback:
		return "fallback"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText renders the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the result of one directory entry.
type Outcome struct {
	Name         string        `json:"name"`
	Status       Status        `json:"status"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
	Err          error         `json:"-"`
}

// Report summarizes a scan. Outcomes follow directory order.
type Report struct {
	ID         uuid.UUID     `json:"id"`
	BaseFolder string        `json:"baseFolder"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Outcomes   []Outcome     `json:"outcomes"`
}

func newReport(baseFolder string) *Report {
	return &Report{
		ID:         uuid.New(),
		BaseFolder: baseFolder,
		StartedAt:  time.Now(),
	}
}

func (r *Report) filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Bound returns the entries whose handler was mounted.
func (r *Report) Bound() []Outcome { return r.filter(StatusBound) }

// Fallback returns the entries served by a fallback page.
func (r *Report) Fallback() []Outcome { return r.filter(StatusFallback) }

// Skipped returns the entries that were not domain directories.
func (r *Report) Skipped() []Outcome { return r.filter(StatusSkipped) }

// Failed returns the entries rejected before mounting.
func (r *Report) Failed() []Outcome { return r.filter(StatusFailed) }

// Mounted returns how many handlers the scan mounted, fallbacks included.
func (r *Report) Mounted() int {
	return len(r.Bound()) + len(r.Fallback())
}
