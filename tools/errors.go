package tools

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrFailedUnmarshalInput is returned when the tool input is not a valid JSON object.
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	// ErrInvalidArguments is returned when the input does not match the declared parameters.
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrNetwork is returned when the external service can not be reached.
	ErrNetwork = errors.New("network error")
	// ErrNotFound is returned when the external service has no result for the request.
	ErrNotFound = errors.New("not found")
	// ErrDecode is returned when the response of the external service can not be decoded.
	ErrDecode = errors.New("failed to decode response")
	// ErrService is returned when the external service reports an error in a successful response.
	ErrService = errors.New("service error")
)

// StatusError is returned when the external service responds with non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
}

// NewStatusError returns StatusError for the code
func NewStatusError(code int) error {
	return errors.WithStack(&StatusError{Code: code})
}

// StatusCode returns the HTTP status code from StatusError,
// or 0 if the error is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// NetworkError marks err as ErrNetwork
func NetworkError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrNetwork)
}

// DecodeError marks err as ErrDecode
func DecodeError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrDecode)
}

// ServiceError marks err as ErrService
func ServiceError(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrService)
}
