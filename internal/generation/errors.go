package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/deckmind/internal/domain"
)

// Gateway errors. All of them wrap domain.ErrExternalService except
// ErrMalformedPayload, which wraps domain.ErrSerialization.
var (
	// ErrTransport is returned when the service cannot be reached.
	ErrTransport = fmt.Errorf("%w: generative service unreachable", domain.ErrExternalService)

	// ErrTransientFailure is returned when the service answered with a
	// retryable status and the retries were exhausted.
	ErrTransientFailure = fmt.Errorf("%w: transient generative service failure", domain.ErrExternalService)

	// ErrRequestRejected is returned for non-success statuses that will not
	// succeed on retry, such as an invalid key or an unknown model.
	ErrRequestRejected = fmt.Errorf("%w: request rejected by generative service", domain.ErrExternalService)

	// ErrContentBlocked is returned when the service refuses to answer due to
	// its safety filters.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by safety filters", domain.ErrExternalService)

	// ErrEmptyResponse is returned when a successful reply carries no text.
	ErrEmptyResponse = fmt.Errorf("%w: empty response from generative service", domain.ErrExternalService)

	// ErrMalformedPayload is returned when reply text does not decode into the
	// expected shape.
	ErrMalformedPayload = fmt.Errorf("%w: malformed generative payload", domain.ErrSerialization)

	// ErrInvalidConfig is returned by gateway constructors.
	ErrInvalidConfig = errors.New("invalid gateway configuration")
)

// PayloadError carries the raw reply that failed to decode so callers can log
// it. It always unwraps to ErrMalformedPayload.
type PayloadError struct {
	Raw string
	Err error
}

// Error implements the error interface.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMalformedPayload, e.Err)
}

// Unwrap exposes both the sentinel and the decoding cause.
func (e *PayloadError) Unwrap() []error {
	return []error{ErrMalformedPayload, e.Err}
}

func malformed(raw string, format string, args ...any) error {
	return &PayloadError{Raw: raw, Err: fmt.Errorf(format, args...)}
}

// IsRetryable reports whether a gateway error may succeed on another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTransientFailure)
}
