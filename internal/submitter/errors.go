package submitter

import (
	"errors"
	"fmt"
)

// Sentinel kinds for submit failures. All of them surface the same way on the
// status display; they exist for errors.Is in callers and tests.
var (
	ErrEncode    = errors.New("encode submission failed")
	ErrTransport = errors.New("post submission failed")
	ErrStatus    = errors.New("unexpected response status")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error occurred. Status: %d", e.Code)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }
