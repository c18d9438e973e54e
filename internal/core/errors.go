package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes form a closed taxonomy. Every source maps its upstream
// failures onto exactly one of these before the error crosses the
// provider boundary.
const (
	CodeTickerNotFound   = "TICKER_NOT_FOUND"
	CodeDataNotAvailable = "DATA_NOT_AVAILABLE"
	CodeAPIError         = "API_ERROR"
	CodeAuthentication   = "AUTHENTICATION_ERROR"
	CodeRateLimit        = "RATE_LIMIT"
	CodeInvalidPeriod    = "INVALID_PERIOD"
	CodeInvalidInterval  = "INVALID_INTERVAL"
	CodeConfigInvalid    = "CONFIG_INVALID"
)

// Error is a structured error with a taxonomy code, an optional cause and
// optional detail fields (offending symbol, HTTP status, accepted tokens).
type Error struct {
	Code     string
	Message  string
	Symbol   string
	Status   int
	Accepted []string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Symbol != "" {
		fmt.Fprintf(&b, " (symbol %s)", e.Symbol)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if len(e.Accepted) > 0 {
		fmt.Fprintf(&b, " (accepted: %s)", strings.Join(e.Accepted, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by taxonomy code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinel values for errors.Is checks.
var (
	ErrTickerNotFound   = &Error{Code: CodeTickerNotFound, Message: "ticker not found"}
	ErrDataNotAvailable = &Error{Code: CodeDataNotAvailable, Message: "data not available"}
	ErrAPI              = &Error{Code: CodeAPIError, Message: "api error"}
	ErrAuthentication   = &Error{Code: CodeAuthentication, Message: "authentication failed"}
	ErrRateLimit        = &Error{Code: CodeRateLimit, Message: "rate limited"}
	ErrInvalidPeriod    = &Error{Code: CodeInvalidPeriod, Message: "invalid period"}
	ErrInvalidInterval  = &Error{Code: CodeInvalidInterval, Message: "invalid interval"}
	ErrConfigInvalid    = &Error{Code: CodeConfigInvalid, Message: "configuration invalid"}
)

// TickerNotFound reports an identifier the upstream has no record for.
func TickerNotFound(symbol string) *Error {
	return &Error{Code: CodeTickerNotFound, Message: "ticker not found", Symbol: symbol}
}

// DataNotAvailable reports a request that reached the upstream but yielded
// zero usable records.
func DataNotAvailable(reason string) *Error {
	return &Error{Code: CodeDataNotAvailable, Message: reason}
}

// APIError reports a transport-level failure. Status may be zero when the
// failure happened before a response arrived.
func APIError(status int, message string, cause error) *Error {
	return &Error{Code: CodeAPIError, Message: message, Status: status, Cause: cause}
}

// AuthenticationError reports a rejected or underivable credential.
func AuthenticationError(message string) *Error {
	return &Error{Code: CodeAuthentication, Message: message}
}

// RateLimitError reports upstream throttling.
func RateLimitError(status int) *Error {
	return &Error{Code: CodeRateLimit, Message: "rate limited by upstream", Status: status}
}

// InvalidPeriod reports a period token outside the recognized enumeration.
func InvalidPeriod(got string) *Error {
	return &Error{
		Code:     CodeInvalidPeriod,
		Message:  fmt.Sprintf("unrecognized period %q", got),
		Accepted: AcceptedPeriods(),
	}
}

// InvalidInterval reports an interval token outside the recognized
// enumeration.
func InvalidInterval(got string) *Error {
	return &Error{
		Code:     CodeInvalidInterval,
		Message:  fmt.Sprintf("unrecognized interval %q", got),
		Accepted: AcceptedIntervals(),
	}
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Cause: cause}
}

// CodeOf extracts the taxonomy code from an error, or "error" for foreign
// error types. Used as a metrics label.
func CodeOf(err error) string {
	if err == nil {
		return "ok"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "error"
}
