package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the exchange does not answer in time.
	ErrTimeout = errors.New("request timed out")

	// ErrScripNotFound is returned when a lookup response has no entry that
	// matches the requested scrip code or symbol.
	ErrScripNotFound = errors.New("scrip not found")

	ErrInvalidDateRange           = errors.New("'from' date cannot be after 'to' date")
	ErrInvalidGroup               = errors.New("not a valid stock group")
	ErrSubcategoryWithoutCategory = errors.New("subcategory requires a category")
	ErrMissingScripCode           = errors.New("scrip code is required")
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
}
