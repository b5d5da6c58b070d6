// Copyright (c) 2026 Libro. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package loadstate models the lifecycle of an asynchronously loaded value.

A [State] is always exactly one of Idle, Loading, Failed or Loaded. The value
is only reachable in the Loaded phase and the error only in the Failed phase,
so a view can never show stale data next to an error banner.
*/
package loadstate

// Phase tags the variant held by a [State].
type Phase int

const (
	Idle Phase = iota
	Loading
	Failed
	Loaded
)

// String returns the lowercase phase name used in JSON payloads.
func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	case Loaded:
		return "loaded"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a tagged union over the load phases of a value of type T.
type State[T any] struct {
	phase Phase
	value T
	err   error
}

// Start returns the Loading state.
func Start[T any]() State[T] {
	return State[T]{phase: Loading}
}

// Fail returns the Failed state carrying err.
func Fail[T any](err error) State[T] {
	return State[T]{phase: Failed, err: err}
}

// Done returns the Loaded state carrying value.
func Done[T any](value T) State[T] {
	return State[T]{phase: Loaded, value: value}
}

// From builds the terminal state of a load from its result.
func From[T any](value T, err error) State[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Done(value)
}

// Phase returns the current variant tag.
func (s State[T]) Phase() Phase { return s.phase }

// Value returns the loaded value and true, or the zero value and false.
func (s State[T]) Value() (T, bool) {
	if s.phase != Loaded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the failure cause, or nil outside the Failed phase.
func (s State[T]) Err() error {
	if s.phase != Failed {
		return nil
	}
	return s.err
}
