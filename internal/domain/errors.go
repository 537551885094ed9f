package domain

import (
	"errors"
	"fmt"
)

// Error kinds, one per failure class. Every error is terminal for the
// run; there are no retries and no partial recovery.
var (
	ErrParse        = errors.New("invalid task definition input")
	ErrRegistration = errors.New("task definition registration failed")
	ErrLaunch       = errors.New("task launch failed")
	ErrTimeout      = errors.New("timed out waiting for tasks to stop")
	ErrOutcome      = errors.New("one or more containers failed")
)

// RunError wraps a failure with its taxonomy kind and, when present, the
// underlying cause.
type RunError struct {
	Kind error
	Msg  string
	Err  error
}

func (e *RunError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Msg == "" && e.Err == nil:
		return e.Kind.Error()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Msg, e.Err)
	}
}

func (e *RunError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Parsef(format string, args ...interface{}) error {
	return &RunError{Kind: ErrParse, Msg: fmt.Sprintf(format, args...)}
}

func RegistrationErr(err error) error {
	return &RunError{Kind: ErrRegistration, Err: err}
}

func Launchf(format string, args ...interface{}) error {
	return &RunError{Kind: ErrLaunch, Msg: fmt.Sprintf(format, args...)}
}

func TimeoutErr(cluster string, err error) error {
	return &RunError{Kind: ErrTimeout, Msg: fmt.Sprintf("cluster %q", cluster), Err: err}
}

func Outcomef(format string, args ...interface{}) error {
	return &RunError{Kind: ErrOutcome, Msg: fmt.Sprintf(format, args...)}
}
