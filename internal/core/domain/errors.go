package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingCode indicates the callback arrived without an authorization code
	ErrMissingCode = errors.New("missing authorization code")

	// ErrInvalidState indicates the callback state is unknown, expired, or forged.
	// Handlers must fail closed on this error: no session cookie is ever issued.
	ErrInvalidState = errors.New("invalid state")

	// ErrTokenExchange indicates the code-for-token exchange with the identity
	// provider failed or returned an unusable response
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrMissingSubject indicates the identity token carried no subject claim.
	// This is a protocol violation, not a recoverable condition.
	ErrMissingSubject = errors.New("identity token missing subject")

	// ErrProfileStore indicates the profile store could not be read or written
	ErrProfileStore = errors.New("profile store error")

	// ErrTermsNotAccepted indicates profile completion without accepted terms
	ErrTermsNotAccepted = errors.New("terms not accepted")
)
