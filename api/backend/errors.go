package backend

import (
	"errors"
	"fmt"
)

// APIError is a response body that carried an "error" field.
type APIError struct {
	Resource string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

// FetchError is a transport or decode failure.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err came from a backend error field. Read
// panes render these as "Unauthorized".
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Message returns the text shown to the user for a failed mutation: the
// backend message verbatim when there is one.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
