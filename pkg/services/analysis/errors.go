package analysis

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport covers unreachable hosts, DNS failures and timeouts.
	ErrTransport = errors.New("analysis service unreachable")
	// ErrStatus is wrapped by StatusError for non-2xx answers.
	ErrStatus = errors.New("analysis service returned an error status")
	// ErrMalformed marks bodies that do not decode into the response contract.
	ErrMalformed = errors.New("analysis service returned an unexpected response")
)

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis service returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("analysis service returned %d %s: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// Message turns a submission error into the text shown in the error panel.
func Message(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Analysis failed: the service answered %d %s.", statusErr.Code, http.StatusText(statusErr.Code))
	case errors.Is(err, ErrMalformed):
		return "Analysis failed: the service returned a response that could not be read."
	default:
		return fmt.Sprintf("Analysis failed: %v", err)
	}
}
