package core

import (
	"errors"
	"fmt"
)

// Kind groups coded errors by the class of failure they report.
type Kind int

const (
	KindAuthentication Kind = iota + 1 // 401
	KindAuthorization                  // 403
	KindConflict                       // 409
	KindNotFound                       // 404
	KindValidation                     // 400
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a failure reported to API clients. Code is part of the public
// contract and must not change once released.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	base *Error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches the sentinel an error was derived from, so resource specific
// messages still satisfy errors.Is(err, ErrOwnerOnly).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.base != nil && e.base == t)
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	base := e
	if e.base != nil {
		base = e.base
	}
	return &Error{Kind: e.Kind, Code: e.Code, Message: msg, base: base}
}

// AsError extracts the coded error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Signup errors
var (
	ErrDuplicateUsername = newError(KindConflict, "SGR-001", "Try any other Username, this Username has already been taken")
	ErrDuplicateEmail    = newError(KindConflict, "SGR-002", "This user has already been registered, try with any other emailId")
)

// Signin errors
var (
	ErrUnknownUser        = newError(KindAuthentication, "ATH-001", "This username does not exist")
	ErrBadCredentials     = newError(KindAuthentication, "ATH-002", "Password failed")
	ErrInvalidBasicHeader = newError(KindAuthentication, "ATH-003", "Authorization header must be 'Basic <base64 username:password>'")
)

// Session errors
var (
	ErrNotSignedIn      = newError(KindAuthorization, "ATHR-001", "User has not signed in")
	ErrSignedOut        = newError(KindAuthorization, "ATHR-002", "User is signed out.Sign in first to get user details")
	ErrSessionExpired   = newError(KindAuthorization, "ATHR-004", "User session has expired.Sign in again")
	ErrSignOutNoSession = newError(KindAuthorization, "SGR-001", "User is not Signed in")
	ErrAlreadySignedOut = newError(KindAuthorization, "SGR-003", "User is already signed out")
)

// Ownership errors
var (
	ErrOwnerOnly        = newError(KindAuthorization, "ATHR-003", "Only the owner can edit the resource")
	ErrOwnerOrAdminOnly = newError(KindAuthorization, "ATHR-003", "Only the owner or admin can delete the resource")
)

// Lookup errors
var (
	ErrUserNotFound     = newError(KindNotFound, "USR-001", "User with entered uuid does not exist")
	ErrQuestionNotFound = newError(KindNotFound, "QUES-001", "Entered question uuid does not exist")
	ErrAnswerNotFound   = newError(KindNotFound, "ANS-001", "Entered answer uuid does not exist")
)

// ErrInvalidInput is returned with a field level message when a request
// body fails validation.
var ErrInvalidInput = newError(KindValidation, "VAL-001", "Invalid input")

// Storage errors (never rendered to clients as-is)
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrCacheNotFound   = errors.New("session not found in cache")
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required")
	ErrHTTPAdapterRequired = errors.New("http adapter is required")
	ErrSecretRequired      = errors.New("secret is required")
	ErrSecretTooShort      = errors.New("secret too short")
)
