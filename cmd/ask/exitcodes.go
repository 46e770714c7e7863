package main

// Exit codes for datascope-ask.
const (
	ExitOK           = 0 // Answer shown.
	ExitInvalidArgs  = 1 // Bad flags or page path.
	ExitServiceError = 2 // Service answered with an error.
	ExitFailure      = 3 // No answer could be obtained.
)

type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }
