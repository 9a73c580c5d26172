package k8s

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ErrUnavailable is reported when no typed client is configured.
var ErrUnavailable = errors.New("kubernetes client unavailable")

// Kind tags the outcome of a typed cluster call.
type Kind int

const (
	// OK means the call succeeded.
	OK Kind = iota
	// APIFailure means the control plane answered with a structured error.
	APIFailure
	// TransportFailure means no structured answer was obtained.
	TransportFailure
	// Unavailable means there was no client to call.
	Unavailable
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case APIFailure:
		return "api_error"
	case TransportFailure:
		return "transport_error"
	case Unavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome describes how a typed call ended.
type Outcome struct {
	Kind    Kind
	Message string
	Reason  metav1.StatusReason
	Code    int32
	Err     error
}

// Classify turns an error from client-go into an Outcome.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OK}
	}
	if errors.Is(err, ErrUnavailable) {
		return Outcome{Kind: Unavailable, Message: err.Error(), Err: err}
	}

	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		msg := s.Message
		if msg == "" {
			msg = err.Error()
		}
		return Outcome{
			Kind:    APIFailure,
			Message: msg,
			Reason:  s.Reason,
			Code:    s.Code,
			Err:     err,
		}
	}

	return Outcome{Kind: TransportFailure, Message: err.Error(), Err: err}
}

// Fallback reports whether the textual command path should be tried.
func (o Outcome) Fallback() bool {
	return o.Kind == APIFailure || o.Kind == Unavailable
}

// NotFound reports whether the API rejected the call because the object does not exist.
func (o Outcome) NotFound() bool {
	return o.Kind == APIFailure && o.Reason == metav1.StatusReasonNotFound
}

// Result is the tagged result of a typed call.
type Result[T any] struct {
	Value   T
	Outcome Outcome
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Outcome.Kind == OK
}

// Do runs fn and tags its result.
func Do[T any](fn func() (T, error)) Result[T] {
	v, err := fn()
	if err != nil {
		var zero T
		return Result[T]{Value: zero, Outcome: Classify(err)}
	}
	return Result[T]{Value: v, Outcome: Outcome{Kind: OK}}
}
