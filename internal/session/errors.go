package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for invalid operations on a session.
var (
	ErrNotFound           = errors.New("session not found")
	ErrNotActive          = errors.New("session is not active")
	ErrEmptyAnswer        = errors.New("answer must not be empty")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrLimitReached       = errors.New("question limit reached")
	ErrInvalidMode        = errors.New("invalid session mode")
	ErrMissingFeedback    = errors.New("model turn is missing feedback")
	ErrUnexpectedFeedback = errors.New("first model turn must not carry feedback")
)

// StartError indicates the session could not be started. The session is not
// created, so the caller can retry from setup.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start session: %v", e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// SubmitError indicates an answer submission failed. The conversation log is
// left untouched, so the same answer can be resubmitted.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit answer: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
