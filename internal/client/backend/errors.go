package backend

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid request")
)

// Error is a failure reported by the backend. Error() returns the backend's
// message unchanged so it can be shown to the user; it may be empty.
type Error struct {
	Code    codes.Code
	Message string
	err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == codes.Unauthenticated || e.Code == codes.PermissionDenied
	case ErrUnavailable:
		return e.Code == codes.Unavailable || e.Code == codes.DeadlineExceeded
	case ErrNotFound:
		return e.Code == codes.NotFound
	case ErrInvalid:
		return e.Code == codes.InvalidArgument
	}
	return false
}

// NewError builds an Error with the given code and message.
func NewError(code codes.Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// FromRPC converts a gRPC call error into an *Error. Context errors of the
// caller are mapped too so screens see one error type.
func FromRPC(err error) error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	if st, ok := status.FromError(err); ok {
		return &Error{Code: st.Code(), Message: st.Message(), err: err}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: codes.DeadlineExceeded, Message: err.Error(), err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Code: codes.Canceled, Message: err.Error(), err: err}
	}
	return &Error{Code: codes.Unknown, Message: err.Error(), err: err}
}

// Message returns the user-facing text of err, or "" when it carries none.
func Message(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}
