package domain

import "time"

type RunStatus string

const (
	RunStatusRunning             RunStatus = "running"
	RunStatusCompleted           RunStatus = "completed"
	RunStatusCompletedWithErrors RunStatus = "completed_with_errors"
	RunStatusFetchFailed         RunStatus = "fetch_failed"
	RunStatusCancelled           RunStatus = "cancelled"
	RunStatusNotImplemented      RunStatus = "not_implemented"
)

type ItemFailure struct {
	Index  int    `json:"index"`  // Position in the fetched sequence
	Name   string `json:"name"`   // Record name or #id
	Reason string `json:"reason"` // Error text
}

// Report summarises one migration run. Scope narrows the run when the entity is
// nested, e.g. "attribute:12" for terms.
type Report struct {
	ID         string        `json:"id"`
	Entity     Entity        `json:"entity"`
	Scope      string        `json:"scope,omitempty"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Fetched    int           `json:"fetched"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	FetchError string        `json:"fetch_error,omitempty"`
	Failures   []ItemFailure `json:"failures,omitempty"`
	Children   []*Report     `json:"children,omitempty"` // Per-scope runs, e.g. terms per attribute
}

func (r *Report) RecordSuccess() {
	r.Succeeded++
}

func (r *Report) RecordFailure(index int, name string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, ItemFailure{Index: index, Name: name, Reason: err.Error()})
}

// Finish stamps the end time and derives the status unless one was already set
// (fetch failure, cancellation, not implemented).
func (r *Report) Finish(now time.Time) {
	r.FinishedAt = now
	if r.Status != RunStatusRunning && r.Status != "" {
		return
	}
	if r.Failed > 0 {
		r.Status = RunStatusCompletedWithErrors
		return
	}
	r.Status = RunStatusCompleted
}

// Absorb adds the counters of a child run to the parent.
func (r *Report) Absorb(child *Report) {
	r.Children = append(r.Children, child)
	r.Fetched += child.Fetched
	r.Succeeded += child.Succeeded
	r.Failed += child.Failed
	r.Skipped += child.Skipped
}
