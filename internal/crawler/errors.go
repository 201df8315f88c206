package crawler

import (
	"errors"
	"fmt"
)

// Fatal fetch error kinds. Every error returned by Fetcher.Fetch matches exactly one
// of them with errors.Is.
var (
	ErrPolicy    = errors.New("url not allowed")
	ErrTransport = errors.New("transport failure")
	ErrFormat    = errors.New("unusable payload")
)

// PolicyError reports a URL rejected before any network access.
type PolicyError struct {
	URL    string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPolicy, e.URL, e.Reason)
}

func (e *PolicyError) Unwrap() error {
	return ErrPolicy
}

// TransportError reports a network failure or a non-success HTTP status. Status is 0
// when no response was received.
type TransportError struct {
	Err     error
	URL     string
	Excerpt string
	Status  int
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrTransport, e.URL, e.Err)
	case e.Excerpt != "":
		return fmt.Sprintf("%s: %s: status %d: %s", ErrTransport, e.URL, e.Status, e.Excerpt)
	default:
		return fmt.Sprintf("%s: %s: status %d", ErrTransport, e.URL, e.Status)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}

	return []error{ErrTransport, e.Err}
}

// FormatKind distinguishes the two ways a body can be unusable.
type FormatKind string

// Format error kinds.
const (
	FormatMarkup      FormatKind = "markup"
	FormatInvalidJSON FormatKind = "invalid_json"
)

// FormatError reports a body that is an HTML page or not valid JSON.
type FormatError struct {
	URL     string
	Kind    FormatKind
	Excerpt string
}

func (e *FormatError) Error() string {
	if e.Kind == FormatMarkup {
		return fmt.Sprintf("%s: %s: response looks like an HTML page, the session may have expired or the portal requires login: %s",
			ErrFormat, e.URL, e.Excerpt)
	}

	return fmt.Sprintf("%s: %s: response is not valid JSON: %s", ErrFormat, e.URL, e.Excerpt)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}
