// Package apperr defines reviewbridge's closed error taxonomy and the
// classifier that maps opaque vendor-SDK error strings onto it.
package apperr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Code is one of the closed set of error kinds reviewbridge ever surfaces.
type Code string

const (
	CodexTimeout     Code = "CODEX_TIMEOUT"
	CodexParseError  Code = "CODEX_PARSE_ERROR"
	GitError         Code = "GIT_ERROR"
	ConfigError      Code = "CONFIG_ERROR"
	StorageError     Code = "STORAGE_ERROR"
	SessionNotFound  Code = "SESSION_NOT_FOUND"
	AuthError        Code = "AUTH_ERROR"
	ModelError       Code = "MODEL_ERROR"
	RateLimited      Code = "RATE_LIMITED"
	NetworkError     Code = "NETWORK_ERROR"
	UnknownError     Code = "UNKNOWN_ERROR"
)

// Error is a reviewbridge domain error: a closed Code plus a human message.
// Its Error() rendering is the wire format handlers surface verbatim.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that wraps cause, using cause's message unless
// message is non-empty.
func Wrap(code Code, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

var quotedName = regexp.MustCompile(`['"]([^'"]+)['"]`)

// Classify maps a vendor SDK error into the closed taxonomy per the
// case-insensitive substring rules: cancellation-shaped errors short-circuit
// to CodexTimeout ahead of everything else. fallbackModel is used when a
// MODEL_ERROR message names no model.
func Classify(err error, fallbackModel string) *Error {
	if err == nil {
		return nil
	}
	if existing, ok := As(err); ok {
		return existing
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "aborted") || strings.Contains(msg, "AbortError") {
		return New(CodexTimeout, "review timed out")
	}
	switch {
	case strings.Contains(lower, "api_key"), strings.Contains(lower, "authentication"), strings.Contains(lower, "401"):
		return Wrap(AuthError, err, msg)
	case strings.Contains(lower, "not supported"), strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		name := fallbackModel
		if m := quotedName.FindStringSubmatch(msg); len(m) == 2 {
			name = m[1]
		}
		return Wrap(ModelError, err, fmt.Sprintf("model %q not supported", name))
	case strings.Contains(lower, "429"), strings.Contains(lower, "rate_limit"), strings.Contains(lower, "rate limit"):
		return Wrap(RateLimited, err, msg)
	case strings.Contains(lower, "fetch failed"), strings.Contains(lower, "econnrefused"), strings.Contains(lower, "enotfound"):
		return Wrap(NetworkError, err, msg)
	default:
		return Wrap(UnknownError, err, msg)
	}
}
