package domain

import (
	"errors"
	"fmt"
)

// Error classes. Concrete errors wrap exactly one of these.
var (
	// ErrTransport covers connection and body read failures.
	ErrTransport = errors.New("sunshade: transport error")

	// ErrProtocol is returned for a non-success HTTP status.
	ErrProtocol = errors.New("sunshade: unexpected response status")

	// ErrMalformedStream is returned when the response body is not valid UTF-8,
	// including a multi-byte character truncated by end of stream.
	ErrMalformedStream = errors.New("sunshade: malformed utf-8 stream")

	// ErrParse covers missing fields and malformed vendor time strings.
	ErrParse = errors.New("sunshade: parse error")

	// ErrTimeResolution is returned when a wall-clock value does not map to
	// exactly one instant.
	ErrTimeResolution = errors.New("sunshade: local time resolution failed")
)

// Time resolution failures.
var (
	ErrAmbiguousLocalTime   = fmt.Errorf("%w: ambiguous local time", ErrTimeResolution)
	ErrNonexistentLocalTime = fmt.Errorf("%w: nonexistent local time", ErrTimeResolution)
)

// Orchestration and environment errors.
var (
	// ErrClockUnsynced is returned when the wall clock cannot be trusted.
	ErrClockUnsynced = errors.New("sunshade: clock not synchronized")

	// ErrPhaseOrder is returned when a cycle step runs out of order.
	ErrPhaseOrder = errors.New("sunshade: cycle phase out of order")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("sunshade: invalid configuration")
)

// StatusError reports a response status outside the 2xx class.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response code: %d", e.Code)
}

// Is matches ErrProtocol.
func (e *StatusError) Is(target error) bool {
	return target == ErrProtocol
}

// ParseErrorKind identifies why a payload or time string was rejected.
type ParseErrorKind int

const (
	// InvalidPayload means the response text is not a JSON object.
	InvalidPayload ParseErrorKind = iota
	// MissingField means results.sunrise or results.sunset is absent or not a string.
	MissingField
	// MalformedTime means a vendor time string did not yield hour, minute and second.
	MalformedTime
	// VendorStatus means the payload carried a status other than "OK".
	VendorStatus
	// Implausible means a resolved instant is too far from the astronomical estimate.
	Implausible
	// StaleEvents means the vendor's date or zone does not match the device's.
	StaleEvents
)

// String returns a short name for the kind.
func (k ParseErrorKind) String() string {
	switch k {
	case InvalidPayload:
		return "invalid_payload"
	case MissingField:
		return "missing_field"
	case MalformedTime:
		return "malformed_time"
	case VendorStatus:
		return "vendor_status"
	case Implausible:
		return "implausible"
	case StaleEvents:
		return "stale_events"
	default:
		return "unknown"
	}
}

// ParseError describes a rejected payload field or time string.
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "parse " + e.Kind.String()
	if e.Field != "" {
		msg += " field=" + e.Field
	}
	if e.Raw != "" {
		msg += fmt.Sprintf(" raw=%q", e.Raw)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Class returns the error class sentinel err belongs to, or nil when err
// matches none of them.
func Class(err error) error {
	for _, c := range []error{ErrTransport, ErrProtocol, ErrMalformedStream, ErrParse, ErrTimeResolution, ErrClockUnsynced} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
