// Package errors provides the typed error values used across the hosting stack.
package errors

import (
	"context"
)

// inChain reports whether match holds for err or any error it wraps. Errors are compared by
// identity and code, never by message.
func inChain(err error, match func(error) bool) bool {
	for err != nil {
		if match(err) {
			return true
		}

		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if inChain(inner, match) {
					return true
				}
			}

			return false
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		default:
			return false
		}
	}

	return false
}

func hasCode(err error, codes ...ERR) bool {
	tErr, ok := err.(*Error)
	if !ok || tErr == nil {
		return false
	}

	for _, code := range codes {
		if tErr.code == code {
			return true
		}
	}

	return false
}

func isContextSentinel(err error) bool {
	return err == context.Canceled || err == context.DeadlineExceeded //nolint:errorlint // sentinels compared by identity
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	return inChain(err, func(e error) bool {
		return isContextSentinel(e) || hasCode(e, ERR_CONTEXT, ERR_CONTEXT_CANCELED)
	})
}

// IsCancellation reports whether err means a unit of work stopped because it was asked to.
// Unlike IsContextError it does not treat ERR_CONTEXT (a failed wait) as a cancellation.
func IsCancellation(err error) bool {
	return inChain(err, func(e error) bool {
		return isContextSentinel(e) || hasCode(e, ERR_CONTEXT_CANCELED)
	})
}

// GetErrorCategory returns a short label for err, suitable for metrics and logs.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if IsContextError(err) {
		return "context"
	}

	var tErr *Error
	if As(err, &tErr) {
		switch code := tErr.Code(); {
		case code == ERR_CONFIGURATION:
			return "configuration"
		case code >= 50 && code <= 59:
			return "service"
		}
	}

	return "unknown"
}
