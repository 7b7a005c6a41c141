package rest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when an authenticated call is made
	// before credentials have been set.
	ErrMissingCredentials = errors.New("rest: api key and secret not set")

	// ErrInvalidResolution is returned when a candle request carries a
	// resolution the exchange does not accept.
	ErrInvalidResolution = errors.New("rest: invalid candle resolution")
)

// APIError is a response envelope with success=false. Message is the
// server-provided error string, verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ftx api error: %s", e.Message)
}

// BadResponseError is a non-2xx HTTP status from the exchange. Body carries
// the raw response text.
type BadResponseError struct {
	Status int
	Body   string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("bad response, code %d, msg: %s", e.Status, e.Body)
}
