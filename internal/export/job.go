package export

import (
	"fmt"
	"time"
)

// State is the lifecycle position of one request.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateInvoking  State = "invoking"
	StateDone      State = "done"
	StateFailed    State = "failed"
)

var transitions = map[State][]State{
	StateIdle:      {StateResolving},
	StateResolving: {StateInvoking, StateFailed},
	StateInvoking:  {StateDone, StateFailed},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether s may move to next.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Job tracks one request through the dispatcher.
type Job struct {
	ID          string    `json:"id"`
	Format      Format    `json:"format"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	PresetName  string    `json:"presetName,omitempty"`
	State       State     `json:"state"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Observer is told about every state change of a job. A returned error is
// logged by the caller but does not affect the job.
type Observer interface {
	JobChanged(job Job) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(job Job) error

func (f ObserverFunc) JobChanged(job Job) error { return f(job) }

// advance moves job to next, stamping UpdatedAt.
func (j *Job) advance(next State, now time.Time) error {
	if !j.State.CanTransition(next) {
		return fmt.Errorf("job %s: invalid transition %s -> %s", j.ID, j.State, next)
	}
	j.State = next
	j.UpdatedAt = now
	return nil
}
