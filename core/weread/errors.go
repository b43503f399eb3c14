package weread

import (
	"errors"
	"fmt"
)

// ErrAuthExpired reports that the session cookie is no longer accepted.
var ErrAuthExpired = errors.New("weread: session cookie expired")

// Platform error codes meaning the session is gone.
const (
	codeLoginTimeout = -2012
	codeLoginExpired = -2010
)

// APIError is an error answer from the platform.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the platform errcode.
	Code int
	// Message is the platform errmsg.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weread api error (status %d, errcode %d): %s", e.Status, e.Code, e.Message)
}

// Is makes errors.Is(err, ErrAuthExpired) true for session errors.
func (e *APIError) Is(target error) bool {
	return target == ErrAuthExpired && (e.Code == codeLoginTimeout || e.Code == codeLoginExpired)
}
