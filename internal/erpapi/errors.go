package erpapi

import (
	"errors"
	"fmt"
)

// ErrUnsuccessful matches any response whose envelope carried success=false.
var ErrUnsuccessful = errors.New("unsuccessful response")

// APIError describes a failed call: either an HTTP error status or a 2xx
// response whose envelope reported success=false.
type APIError struct {
	Path         string
	StatusCode   int
	Message      string
	Unsuccessful bool
}

func (e *APIError) Error() string {
	if e.Unsuccessful {
		if e.Message != "" {
			return fmt.Sprintf("api %s unsuccessful: %s", e.Path, e.Message)
		}
		return fmt.Sprintf("api %s unsuccessful", e.Path)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrUnsuccessful) match envelope failures.
func (e *APIError) Is(target error) bool {
	return target == ErrUnsuccessful && e.Unsuccessful
}

// UserMessage is the backend-supplied text suitable for a notice.
func (e *APIError) UserMessage() string {
	return e.Message
}
