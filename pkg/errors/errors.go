// Package errors defines the gateway error taxonomy. Services return
// GatewayError values; the transport layer translates codes to HTTP statuses
// so handlers never hand-pick status codes.
package errors

import "errors"

// Code identifies a class of failure that callers can branch on.
type Code string

const (
	// CodeBadRequest covers malformed or missing required input.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized covers missing or mismatched credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound covers an unmatched lookup.
	CodeNotFound Code = "not_found"
	// CodeNotEligible covers a business-rule rejection of an otherwise
	// well-formed request (e.g. a student who is not enrolled).
	CodeNotEligible Code = "not_eligible"
	// CodeUnknownParty covers an unresolvable counterparty code.
	CodeUnknownParty Code = "unknown_party"
	// CodeUpstreamUnavailable covers transport failures talking to a
	// counterparty. The core never retries these itself.
	CodeUpstreamUnavailable Code = "upstream_unavailable"
	// CodeConflict covers uniqueness violations.
	CodeConflict Code = "conflict"
	// CodeInternal covers everything unexpected.
	CodeInternal Code = "internal"
)

// GatewayError carries a taxonomy code alongside a human-readable message.
type GatewayError struct {
	Code    Code
	Message string
	Err     error
}

func (e GatewayError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e GatewayError) Unwrap() error { return e.Err }

// New builds a GatewayError without an underlying cause.
func New(code Code, message string) error {
	return GatewayError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return GatewayError{Code: code, Message: message, Err: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the taxonomy code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var gw GatewayError
	if errors.As(err, &gw) {
		return gw.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should
// return. CodeUpstreamUnavailable maps to 500 rather than 502: the original
// protocol surfaces counterparty failures as internal errors and callers key
// off the error body, not the status class.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeUnknownParty:
		return 400
	case CodeUnauthorized:
		return 401
	case CodeNotEligible:
		return 403
	case CodeNotFound:
		return 404
	case CodeConflict:
		return 409
	default:
		return 500
	}
}
