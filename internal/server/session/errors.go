package session

import (
	"errors"
)

// Kind classifies account errors. The HTTP layer maps kinds to status codes.
type Kind string

// Error kinds.
const (
	KindInternal              Kind = "INTERNAL"
	KindInvalidInput          Kind = "INVALID_INPUT"
	KindDuplicateEmail        Kind = "DUPLICATE_EMAIL"
	KindInvalidCredentials    Kind = "INVALID_CREDENTIALS"
	KindInvalidToken          Kind = "INVALID_TOKEN"
	KindTokenInvalidated      Kind = "TOKEN_INVALIDATED"
	KindInvalidOrExpiredToken Kind = "INVALID_OR_EXPIRED_TOKEN"
	KindUserNotFound          Kind = "USER_NOT_FOUND"
	KindAlreadyVerified       Kind = "ALREADY_VERIFIED"
)

// Error is a user-facing account error. Two errors match under errors.Is
// when their kinds are equal, so callers compare against the Err* values
// regardless of the message.
type Error struct {
	Err     error
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinel values for errors.Is.
var (
	ErrInvalidInput          = &Error{Kind: KindInvalidInput, Message: "Invalid input"}
	ErrDuplicateEmail        = &Error{Kind: KindDuplicateEmail, Message: "Email already registered"}
	ErrInvalidCredentials    = &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken, Message: "Invalid or expired refresh token"}
	ErrTokenInvalidated      = &Error{Kind: KindTokenInvalidated, Message: "Token has been invalidated"}
	ErrInvalidOrExpiredToken = &Error{Kind: KindInvalidOrExpiredToken, Message: "Invalid or expired token"}
	ErrUserNotFound          = &Error{Kind: KindUserNotFound, Message: "User not found"}
	ErrAlreadyVerified       = &Error{Kind: KindAlreadyVerified, Message: "Email already verified"}
)

// KindOf returns the kind of err, or KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func invalidInput(err error) *Error {
	return newError(KindInvalidInput, capitalize(err.Error()), err)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
