package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned when no URL was supplied.
	ErrEmptyURL = errors.New("URL parameter is required")
	// ErrDisallowed is wrapped by a FetchError when robots.txt forbids the path.
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrBodyTooLarge is wrapped by a FetchError when a page exceeds the body cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// ValidationError rejects caller input before any network I/O happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Error fetching web page %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("Error fetching web page %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports HTML that could not be turned into a document.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Error during analysis of %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsFetch(err error) bool {
	var f *FetchError
	return errors.As(err, &f)
}

func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}
