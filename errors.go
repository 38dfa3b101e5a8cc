package storefront

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword covers both an unknown username and a wrong
// password. Callers must not be able to tell the two apart.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrNoEmptyString rejects empty passwords before they reach bcrypt
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("EMPTY_PASSWORD")

// ErrTokenMissing means the request carried no credential at all
var ErrTokenMissing = goerrors.New("missing authorization token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MISSING")

// ErrTokenMalformed means the token could not be decoded
var ErrTokenMalformed = goerrors.New("malformed authorization token", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenSignature means the token decoded but was not signed by us
var ErrTokenSignature = goerrors.New("invalid token signature", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_BAD_SIGNATURE")

// ErrTokenExpired means a well formed, well signed token past its expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrUnknownSubject means a verified token whose subject no longer resolves
// to a stored user, e.g. the account was removed after issuance
var ErrUnknownSubject = goerrors.New("token subject not found", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("UNKNOWN_SUBJECT")

// ErrUsernameTaken is returned on duplicate registration attempts
var ErrUsernameTaken = goerrors.New("a user with that username already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("USERNAME_TAKEN")

// ErrItemNotFound is returned for lookups of unknown item names
var ErrItemNotFound = goerrors.New("item not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("ITEM_NOT_FOUND")

// ErrItemExists is returned when creating an item whose name is taken
var ErrItemExists = goerrors.New("an item with that name already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("ITEM_EXISTS")

// IsAuthError reports whether err belongs to the authentication class. Every
// member of the class renders identically at the HTTP boundary; the caller
// keeps the concrete value for logs only.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryAuth
	}
	return false
}

// IsNotFoundError reports whether err is a classified not-found error.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return false
}

// IsConflictError reports whether err is a classified conflict error.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}
