package pipeline

import (
	"fmt"
	"time"
)

// RunResult tallies the outcome of one run. Every processed match increments
// exactly one of Success, Fail or Ignore.
type RunResult struct {
	Success int
	Fail    int
	Ignore  int

	// Uploads counts uploader invocations, successful or not.
	Uploads  int
	RunID    string
	Duration time.Duration
}

// Total is the number of matches processed.
func (r RunResult) Total() int { return r.Success + r.Fail + r.Ignore }

// Add accumulates the counters of other into r. RunID is left alone.
func (r *RunResult) Add(other RunResult) {
	r.Success += other.Success
	r.Fail += other.Fail
	r.Ignore += other.Ignore
	r.Uploads += other.Uploads
	r.Duration += other.Duration
}

func (r RunResult) String() string {
	return fmt.Sprintf("success: %d, fail: %d, ignore: %d", r.Success, r.Fail, r.Ignore)
}
