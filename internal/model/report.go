package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanReport is everything one scan of one handle produced.
// It is the unit written by report writers and stored in the history DB.
type ScanReport struct {
	// ID uniquely identifies the scan.
	ID string `json:"id"`

	// Handle is the scanned handle.
	Handle string `json:"handle"`

	// StartedAt is when probing began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last probe reached a terminal state.
	FinishedAt time.Time `json:"finished_at"`

	// Network describes how probes were routed ("Direct", "Proxy", "Tor").
	Network string `json:"network,omitempty"`

	// Results holds one record per catalog target, in catalog order.
	Results []Result `json:"results"`

	// Correlation holds the bios shared across platforms.
	Correlation CorrelationMap `json:"correlation"`
}

// NewScanReport creates an empty report for handle with a fresh ID.
func NewScanReport(handle string) *ScanReport {
	return &ScanReport{
		ID:          uuid.NewString(),
		Handle:      handle,
		StartedAt:   time.Now(),
		Results:     []Result{},
		Correlation: CorrelationMap{},
	}
}

// Summary counts results per status.
type Summary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	Errors   int `json:"errors"`
}

// Summary returns result counts per status.
func (r *ScanReport) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Status {
		case StatusFound:
			s.Found++
		case StatusNotFound:
			s.NotFound++
		case StatusError:
			s.Errors++
		}
	}
	return s
}

// Found returns the results whose profile exists, in report order.
func (r *ScanReport) Found() []Result {
	var found []Result
	for _, res := range r.Results {
		if res.IsFound() {
			found = append(found, res)
		}
	}
	return found
}

// Result returns the result for platform.
func (r *ScanReport) Result(platform string) (Result, bool) {
	for _, res := range r.Results {
		if res.Platform == platform {
			return res, true
		}
	}
	return Result{}, false
}

// Duration returns how long the scan took.
func (r *ScanReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
