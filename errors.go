package login

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to structured errors so clients and logs can key on
// them without string-matching messages.
const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeEmailNotVerified    = "EMAIL_NOT_VERIFIED"
	TextCodeNoVerificationFound = "NO_VERIFICATION_RECORD"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeInvalidSignature    = "TOKEN_INVALID_SIGNATURE"
	TextCodeMissingClaim        = "TOKEN_MISSING_CLAIM"
	TextCodeSessionMismatch     = "SESSION_MISMATCH"
	TextCodeSessionNotFound     = "SESSION_NOT_FOUND"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrInvalidCredentials is returned for unknown usernames and for wrong
// passwords alike. The message must stay generic so failed logins do not
// reveal whether the account exists.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotVerified rejects logins for accounts whose verification record
// is still pending.
var ErrEmailNotVerified = goerrors.New("email not verified", goerrors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeForbidden)

// ErrNoVerificationRecord rejects logins for accounts with no verification
// record at all.
var ErrNoVerificationRecord = goerrors.New("no verification record found", goerrors.CategoryAuthz).
	WithTextCode(TextCodeNoVerificationFound).
	WithCode(goerrors.CodeForbidden)

// ErrTokenMalformed is returned when a token does not split into the three
// dot-separated segments of a compact JWT, or a segment cannot be decoded.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidSignature is returned when the recomputed HMAC does not match
// the token's signature segment.
var ErrInvalidSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingClaim is returned when a verified token carries no extractable
// user id.
var ErrMissingClaim = goerrors.New("token has no user id claim", goerrors.CategoryAuth).
	WithTextCode(TextCodeMissingClaim).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionMismatch is returned when a token verifies but is not the token
// currently on record for the user: superseded by a newer login, logged out,
// or never issued by us.
var ErrSessionMismatch = goerrors.New("token does not match the active session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionNotFound is returned by Logout when the user has no session row
// to invalidate.
var ErrSessionNotFound = goerrors.New("user session not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsAuthRejection reports whether err is one of the deliberate request-gate
// rejections. Callers use it to keep rejection responses uniform.
func IsAuthRejection(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	switch rich.TextCode {
	case TextCodeTokenMalformed, TextCodeInvalidSignature, TextCodeMissingClaim, TextCodeSessionMismatch:
		return true
	}
	return false
}
