// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode defines supported error codes used across the connector.
// Codes fall into three retry classes: auth (refresh token and retry once),
// transient (bounded backoff, abort the tick on exhaustion), and fatal
// (log, skip the task, keep the page moving).
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeUnavailable is for transient network/5xx errors where retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests is for rate limiting
	ErrorCodeTooManyRequests

	// ErrorCodeUnauthorized is for rejected or expired tokens (401/403);
	// refreshing the token may fix it
	ErrorCodeUnauthorized

	// ErrorCodeCredentials is for credential grants the identity provider
	// rejects outright; no refresh or retry can fix it, the process must stop
	ErrorCodeCredentials

	// ErrorCodeInvalidArgument is for permanent 4xx rejections of our input
	ErrorCodeInvalidArgument

	// ErrorCodeNotFound is for missing remote resources
	ErrorCodeNotFound

	// ErrorCodeMalformed is for responses or payloads we cannot parse
	ErrorCodeMalformed

	// ErrorCodeContentPolicy is for LLM refusals; never retried
	ErrorCodeContentPolicy

	// ErrorCodeDB is for cursor-store errors
	ErrorCodeDB
)

// FromHTTPStatus maps an HTTP response status to an ErrorCode
func FromHTTPStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case status == http.StatusNotFound:
		return ErrorCodeNotFound
	case status >= 500:
		return ErrorCodeUnavailable
	case status >= 400:
		return ErrorCodeInvalidArgument
	default:
		return ErrorCodeUnknown
	}
}

// IsAuth reports whether err calls for a token refresh before retrying
func IsAuth(err error) bool { return CodeOf(err) == ErrorCodeUnauthorized }

// IsTransient reports whether err may succeed on retry with backoff
func IsTransient(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests, ErrorCodeDB:
		return true
	default:
		return false
	}
}

// IsCredentials reports whether err is a credential rejection that must
// terminate the process rather than be skipped or retried
func IsCredentials(err error) bool { return CodeOf(err) == ErrorCodeCredentials }

// IsFatal reports whether retrying err cannot help; the task is skipped
func IsFatal(err error) bool {
	return err != nil && !IsAuth(err) && !IsTransient(err) && !IsCredentials(err)
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// op is an optional operation tag; orig is the wrapped cause
type Error struct {
	orig error
	msg  string
	code ErrorCode
	op   string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only when err != nil (helper for 1-liners)
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Sugar

// Unauthorizedf returns an unauthorized error
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }

// Credentialsf returns a terminal bad-credentials error
func Credentialsf(format string, a ...any) error { return Newf(ErrorCodeCredentials, format, a...) }

// Unavailablef returns an unavailable (transient) error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// TooManyf returns a rate-limited error
func TooManyf(format string, a ...any) error { return Newf(ErrorCodeTooManyRequests, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// Malformedf returns a malformed data error
func Malformedf(format string, a ...any) error { return Newf(ErrorCodeMalformed, format, a...) }

// ContentPolicyf returns a content-policy refusal error
func ContentPolicyf(format string, a ...any) error { return Newf(ErrorCodeContentPolicy, format, a...) }

// DBf returns a cursor-store error
func DBf(format string, a ...any) error { return Newf(ErrorCodeDB, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }
