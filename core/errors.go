package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// credential acquisition
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrTokenExpired     = errors.New("token expired")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

// AuthError means the session credentials could not be acquired.
// It is terminal for the current operation.
type AuthError struct {
	Err error
}

func NewAuthError(err error) error {
	if err == nil {
		err = ErrNotAuthenticated
	}
	return errors.WithStack(&AuthError{Err: err})
}

func (err *AuthError) Error() string { return "auth failure: " + err.Err.Error() }
func (err *AuthError) Unwrap() error { return err.Err }

// RemoteError means the request reached the remote service but was rejected.
type RemoteError struct {
	Status  int
	Message string
}

func NewRemoteError(status int, msg string) error {
	return errors.WithStack(&RemoteError{Status: status, Message: msg})
}

func (err *RemoteError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("remote error: %s", err.StatusText())
	}
	return fmt.Sprintf("remote error: %s: %s", err.StatusText(), err.Message)
}

// StatusText renders the status the way a browser's statusText does, eg. "403 Forbidden".
func (err *RemoteError) StatusText() string {
	if txt := http.StatusText(err.Status); txt != "" {
		return fmt.Sprintf("%d %s", err.Status, txt)
	}
	return fmt.Sprintf("%d", err.Status)
}

// TransportError means the request never completed.
type TransportError struct {
	Err error
}

func NewTransportError(err error) error {
	return errors.WithStack(&TransportError{Err: err})
}

func (err *TransportError) Error() string { return "transport error: " + err.Err.Error() }
func (err *TransportError) Unwrap() error { return err.Err }

// InvalidArgumentError is returned when a caller passes a value outside of the accepted set.
type InvalidArgumentError struct {
	Arg    string
	Value  string
	Reason string
}

func NewInvalidArgumentError(arg, value, reason string) error {
	return errors.WithStack(&InvalidArgumentError{Arg: arg, Value: value, Reason: reason})
}

func (err *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s=%q: %s", err.Arg, err.Value, err.Reason)
}

func IsAuthFailure(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// AsRemoteError returns the RemoteError in err's chain, if any.
func AsRemoteError(err error) (*RemoteError, bool) {
	var target *RemoteError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
