package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeUsernameTaken      = "USERNAME_TAKEN"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeDataParseError     = "DATA_PARSE_ERROR"
	TextCodeStorage            = "STORAGE_ERROR"
)

// ErrIdentityNotFound is returned when a login names an unknown username
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrUserNotFound is returned by the repository for unknown ids
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrUsernameTaken is returned when registering an existing username
var ErrUsernameTaken = errors.New("user already exists", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeUsernameTaken)

// ErrMismatchedHashAndPassword is returned for a bad password
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeEmptyPassword)

// ErrTokenExpired is returned for a well formed token past its expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed covers tampered, unsigned or unparseable tokens
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnableToDecodeSession unable to decode claims from a parsed token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeSessionDecodeError)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeDataParseError)

// ErrStorage is the base error for failures flushing the collection
var ErrStorage = errors.New("failed to persist user collection", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeStorage)

// NewStorageError wraps an I/O failure so callers can tell it apart
// from a missing record.
func NewStorageError(err error, operation string) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, ErrStorage.Message).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeStorage).
		WithMetadata(map[string]any{
			"operation": operation,
		})
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUserNotFound reports whether err means the record does not exist
func IsUserNotFound(err error) bool {
	return hasTextCode(err, TextCodeUserNotFound)
}

// IsStorageError reports whether err came from a failed flush
func IsStorageError(err error) bool {
	return hasTextCode(err, TextCodeStorage)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}
