// Package asyncstate tracks the observable state of a repeatable asynchronous operation
// where only the most recently started run may publish its result.
package asyncstate

import (
	"sync"

	"github.com/jonathan/skill-pathway/internal/backend"
)

// Status is the lifecycle of one tracked operation.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of a tracked operation. Message is only set in Error and is
// always safe to show to a user.
type State[T any] struct {
	Status  Status
	Value   T
	Message string
}

// Token identifies one run started by Begin.
type Token uint64

// Tracker applies results only from the latest run.
type Tracker[T any] struct {
	mu    sync.Mutex
	gen   Token
	state State[T]
}

// Begin starts a new run, superseding any run still in flight. The previous value is
// kept while loading.
func (t *Tracker[T]) Begin() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.state = transition(t.state, Loading, t.state.Value, "")
	return t.gen
}

// Current reports whether token belongs to the latest run.
func (t *Tracker[T]) Current(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.gen
}

// Finish publishes the outcome of the run identified by token. Outcomes of superseded
// runs are dropped and Finish returns false.
func (t *Tracker[T]) Finish(token Token, value T, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.gen {
		return false
	}
	if err != nil {
		t.state = transition(t.state, Error, t.state.Value, backend.UserMessage(err))
		return true
	}
	t.state = transition(t.state, Success, value, "")
	return true
}

// Reset returns the tracker to Idle and invalidates any run in flight.
func (t *Tracker[T]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	var zero T
	t.state = transition(t.state, Idle, zero, "")
}

// Snapshot returns the current state.
func (t *Tracker[T]) Snapshot() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// transition is the single place state changes.
func transition[T any](_ State[T], next Status, value T, message string) State[T] {
	if next != Error {
		message = ""
	}
	return State[T]{Status: next, Value: value, Message: message}
}
