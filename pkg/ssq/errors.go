package ssq

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable is returned when a datagram could not be sent or no reply
	// arrived before the timeout.
	ErrUnreachable = errors.New("server unreachable")

	// ErrMalformedResponse is returned when a reply is too short, carries an
	// unexpected marker byte or ends in the middle of a field.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnsupportedReply is returned for replies that are well formed but cannot
	// be acted upon, e.g. legacy protocol versions or split packets.
	ErrUnsupportedReply = errors.New("unsupported reply")

	// ErrResolve is returned when a host name does not resolve to exactly one address.
	ErrResolve = errors.New("address resolution failed")
)

// HeaderError reports a reply whose type byte differs from the expected one.
type HeaderError struct {
	Expected byte
	Actual   byte
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: unexpected reply type 0x%02X, expected 0x%02X", ErrMalformedResponse, e.Actual, e.Expected)
}

// Is makes HeaderError match ErrMalformedResponse.
func (e *HeaderError) Is(target error) bool {
	return target == ErrMalformedResponse
}
