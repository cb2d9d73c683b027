package entity

import "time"

// RunSummary counts what a pipeline phase did
type RunSummary struct {
	RunID        string
	Phase        string
	Rows         int
	Captured     int
	Failed       int
	Lost         int
	Listings     int
	SkippedItems int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall time of the phase
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
