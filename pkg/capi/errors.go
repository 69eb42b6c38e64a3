package capi

import (
	"errors"
	"fmt"

	"github.com/celerypayroll/capi/internal/common/apperrors"
)

// Error kinds. Every error returned by a Session matches exactly one of these
// with errors.Is. Business errors reported by the service additionally unwrap
// to *APIError with errors.As. ErrInvalidRequest means nothing was sent.
var (
	ErrTransport         = apperrors.New("transport error")
	ErrMalformedResponse = apperrors.New("malformed response")
	ErrInvalidEnvelope   = apperrors.New("object is not a valid API response")
	ErrAPI               = apperrors.New("api error")
	ErrTokenExtraction   = apperrors.New("unable to extract token from authentication response")
	ErrInvalidRequest    = apperrors.New("invalid request")
)

// APIError is a business error reported by the service in the error branch of
// an envelope. Code and Message are preserved verbatim.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", int(e.Code), e.Message)
}

// Is makes every APIError match ErrAPI.
func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// AsAPIError returns the APIError carried by err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsCode reports whether err carries an APIError with the given code.
func IsCode(err error, code ErrorCode) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}
