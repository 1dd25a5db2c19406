// domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means a required secret or credential is absent.
	// The operator has to fix it; retries will not help.
	ErrNotConfigured = errors.New("service not configured")

	// ErrMissingSignature means the webhook carried no signature header.
	ErrMissingSignature = errors.New("missing signature header")

	// ErrInvalidSignature means the signature did not verify against the
	// raw request body.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrMalformedPayload means the event body could not be decoded or a
	// required field is absent.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNotFound means no record matched the event's correlation key.
	ErrNotFound = errors.New("video not found")
)

// MissingField reports a required event field as a malformed-payload error,
// so handlers reject bad shapes before any lookup.
func MissingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedPayload, name)
}
