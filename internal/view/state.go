// Package view holds the per-screen fetch state and the resource screens
// (organizations, locations, vehicles) built on top of the API client.
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/fleetpass/fleetctl/internal/api"
)

// Phase is the tag of a State
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is exactly one of Idle, Loading, Ready(data) or Failed(message)
type State[T any] struct {
	phase   Phase
	data    T
	message string
}

// Idle is the state before the first fetch
func Idle[T any]() State[T] { return State[T]{phase: PhaseIdle} }

// Loading is the state while a fetch is outstanding
func Loading[T any]() State[T] { return State[T]{phase: PhaseLoading} }

// Ready holds fetched data
func Ready[T any](data T) State[T] { return State[T]{phase: PhaseReady, data: data} }

// Failed holds a user-facing message
func Failed[T any](message string) State[T] { return State[T]{phase: PhaseFailed, message: message} }

// Phase returns the tag
func (s State[T]) Phase() Phase { return s.phase }

// Data returns the payload when Ready
func (s State[T]) Data() (T, bool) {
	if s.phase != PhaseReady {
		var zero T
		return zero, false
	}
	return s.data, true
}

// Message returns the failure message when Failed
func (s State[T]) Message() (string, bool) {
	if s.phase != PhaseFailed {
		return "", false
	}
	return s.message, true
}

// Screen owns one State and one error slot for the lifetime of a view.
// Results that arrive after Unmount, or after a newer fetch started, are
// dropped.
type Screen[T any] struct {
	mu        sync.Mutex
	state     State[T]
	errMsg    string
	gen       uint64
	unmounted bool
}

// State returns the current fetch state
func (s *Screen[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the view's error slot
func (s *Screen[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Unmount stops all further state writes
func (s *Screen[T]) Unmount() {
	s.mu.Lock()
	s.unmounted = true
	s.mu.Unlock()
}

// Mounted reports whether the screen still accepts writes
func (s *Screen[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unmounted
}

func (s *Screen[T]) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted {
		return 0, false
	}
	s.gen++
	s.state = Loading[T]()
	return s.gen, true
}

func (s *Screen[T]) finish(gen uint64, next State[T], errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unmounted || gen != s.gen {
		return
	}
	s.state = next
	s.errMsg = errMsg
}

// fail replaces the error slot without touching the fetched data
func (s *Screen[T]) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unmounted {
		s.errMsg = msg
	}
}

func (s *Screen[T]) clearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unmounted {
		s.errMsg = ""
	}
}

// load runs fetch and records Ready or Failed(failMsg)
func (s *Screen[T]) load(ctx context.Context, failMsg string, fetch func(context.Context) (T, error)) (T, error) {
	gen, ok := s.begin()
	if !ok {
		var zero T
		return zero, ErrUnmounted
	}
	data, err := fetch(ctx)
	if err != nil {
		s.finish(gen, Failed[T](failMsg), failMsg)
		return data, &Error{Message: failMsg, Err: err}
	}
	s.finish(gen, Ready(data), "")
	return data, nil
}

// ErrUnmounted is returned when an operation starts on an unmounted screen
var ErrUnmounted = errors.New("view unmounted")

// ErrCancelled is returned when a destructive action was not confirmed
var ErrCancelled = errors.New("cancelled")

// Error is a view failure: the user-facing message plus its cause
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// messageFor prefers the API's own message for form submissions, as the
// create/update screens do; anything else gets the generic fallback.
func messageFor(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt, for --yes
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })
