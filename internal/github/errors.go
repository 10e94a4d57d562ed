package github

import "errors"

var (
	// ErrSourceNotFound means the repository or release does not exist (404).
	ErrSourceNotFound = errors.New("source not found")
	// ErrSourceRateLimited means the source rejected the request with 403/429.
	ErrSourceRateLimited = errors.New("source rate limited")
	// ErrSourceUnavailable covers network failures and 5xx responses.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// StatusError carries the HTTP status behind one of the sentinel errors.
type StatusError struct {
	StatusCode int
	sentinel   error
}

func (e *StatusError) Error() string {
	return e.sentinel.Error()
}

func (e *StatusError) Is(target error) bool {
	return target == e.sentinel
}

func classifyStatus(statusCode int) error {
	switch {
	case statusCode == 404:
		return &StatusError{StatusCode: statusCode, sentinel: ErrSourceNotFound}
	case statusCode == 403 || statusCode == 429:
		return &StatusError{StatusCode: statusCode, sentinel: ErrSourceRateLimited}
	default:
		return &StatusError{StatusCode: statusCode, sentinel: ErrSourceUnavailable}
	}
}
