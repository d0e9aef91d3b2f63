package driving

import (
	"context"
	"time"
)

// LoginService drives the federated login flow: Start builds the redirect to
// the identity provider, Finalize consumes the provider callback.
type LoginService interface {
	// Start resolves the requested return URL, binds it to a fresh CSRF
	// state token, and returns the provider authorization URL to redirect
	// the browser to.
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)

	// Finalize validates the callback state, exchanges the authorization
	// code, reconciles the profile, and mints the session token.
	// Error contract (mapped to HTTP by the driving adapter):
	//   domain.ErrMissingCode   - callback without a code, nothing happened
	//   domain.ErrInvalidState  - fail closed, no session may be issued
	//   domain.ErrTokenExchange - provider rejected the code
	//   domain.ErrMissingSubject - protocol violation in the identity token
	//   domain.ErrProfileStore  - profile store unavailable
	Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResponse, error)
}

// StartRequest carries the caller's requested post-login destination.
type StartRequest struct {
	// ReturnURL is the destination requested via the "return" query
	// parameter. May be empty; invalid values fall back to the configured
	// default, never to an error.
	ReturnURL string
}

// StartResponse contains the authorization redirect target.
type StartResponse struct {
	// AuthorizationURL is the provider URL to redirect the browser to.
	AuthorizationURL string

	// State is the CSRF token bound to this attempt, for reference.
	State string

	// ExpiresAt is when the state binding expires.
	ExpiresAt time.Time
}

// FinalizeRequest carries the provider callback parameters.
type FinalizeRequest struct {
	Code  string
	State string
}

// FinalizeResponse is the outcome of a successful finalize.
type FinalizeResponse struct {
	// RedirectURL is the validated return URL, with first=1 appended when
	// the profile was created by this login.
	RedirectURL string

	// SessionToken is the signed value for the session cookie.
	SessionToken string

	// FirstLogin reports whether this login created the profile.
	FirstLogin bool
}
