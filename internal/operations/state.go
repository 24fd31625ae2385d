package operations

import (
	"sync"
	"time"
)

// RunStatus represents the overall status of a pipeline run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState represents the complete state of a pipeline run. Steps are
// kept in execution order; the same Step id may appear more than once.
type RunState struct {
	mu sync.RWMutex

	ID        string       `json:"id"`
	Status    RunStatus    `json:"status"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Steps     []*StepState `json:"steps"`
	Error     error        `json:"-"`
}

// NewRunState creates a pending run with one pending StepState per spec
func NewRunState(id string, steps []Step) *RunState {
	states := make([]*StepState, len(steps))
	for i, s := range steps {
		states[i] = NewStepState(s.ID(), s.Name())
	}
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     states,
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// GetStatus returns the run status
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// Step returns the state of the i-th Step, or nil when out of range
func (r *RunState) Step(i int) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.Steps) {
		return nil
	}
	return r.Steps[i]
}

// Duration returns the duration of the run
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// CountByStatus returns how many steps are in the given status
func (r *RunState) CountByStatus(status StepStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.Steps {
		if s.GetStatus() == status {
			n++
		}
	}
	return n
}

// HasFailures returns true if any Step has failed
func (r *RunState) HasFailures() bool {
	return r.CountByStatus(StepStatusFailed) > 0
}

// Clone creates a deep copy of the run state
func (r *RunState) Clone() *RunState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := &RunState{
		ID:        r.ID,
		Status:    r.Status,
		StartTime: r.StartTime,
		Steps:     make([]*StepState, len(r.Steps)),
		Error:     r.Error,
	}
	if r.EndTime != nil {
		end := *r.EndTime
		clone.EndTime = &end
	}
	for i, s := range r.Steps {
		clone.Steps[i] = s.clone()
	}
	return clone
}
