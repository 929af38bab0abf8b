// Package state holds the Loading / Success / Error variant emitted by every
// read path to the view layer.
package state

type Kind int

const (
	Loading Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// State is a tagged variant. Data is set for Success and, when a last good
// value exists, for Error so that stale data can still be rendered.
type State[T any] struct {
	Data T
	Err  error
	Kind Kind
}

func NewLoading[T any]() State[T] {
	return State[T]{Kind: Loading}
}

func NewSuccess[T any](data T) State[T] {
	return State[T]{Kind: Success, Data: data}
}

func NewError[T any](err error, stale T) State[T] {
	return State[T]{Kind: Error, Err: err, Data: stale}
}

func (s State[T]) IsLoading() bool { return s.Kind == Loading }
func (s State[T]) IsSuccess() bool { return s.Kind == Success }
func (s State[T]) IsError() bool   { return s.Kind == Error }

// Map converts the payload keeping the variant.
func Map[T, R any](s State[T], fn func(T) R) State[R] {
	if s.Kind == Loading {
		return State[R]{Kind: Loading}
	}
	return State[R]{Kind: s.Kind, Err: s.Err, Data: fn(s.Data)}
}
