// Package service provides the profile use cases and their state sequences.
package service

// Phase marks where an operation is in its state sequence.
type Phase int

// Every operation emits PhaseLoading first, then exactly one terminal
// phase. The Observe operation emits PhaseLoading once per subscription
// and then one success or error state per repository emission.
const (
	PhaseLoading Phase = iota
	PhaseSuccess
	PhaseError
)

// State is a single emission of an operation's state sequence.
// Message carries the user-facing text for error states; Err carries the
// diagnostic cause and is never shown to users.
type State[T any] struct {
	Phase   Phase
	Data    T
	Message string
	Err     error
}

// IsLoading reports whether the state is the loading marker.
func (s State[T]) IsLoading() bool { return s.Phase == PhaseLoading }

// IsSuccess reports whether the state is a terminal success.
func (s State[T]) IsSuccess() bool { return s.Phase == PhaseSuccess }

// IsError reports whether the state is a terminal error.
func (s State[T]) IsError() bool { return s.Phase == PhaseError }

func loading[T any]() State[T] {
	return State[T]{Phase: PhaseLoading}
}

func success[T any](data T) State[T] {
	return State[T]{Phase: PhaseSuccess, Data: data}
}

func failure[T any](message string, err error) State[T] {
	return State[T]{Phase: PhaseError, Message: message, Err: err}
}
