package driven

import (
	"context"

	"github.com/auction-man/vasa-auth/internal/core/domain"
)

// IdentityProvider is the external OIDC-style identity provider: it renders
// the authorization page and exchanges authorization codes for identity
// tokens.
type IdentityProvider interface {
	// AuthCodeURL builds the provider's authorization URL for the given
	// state token.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an identity token, verifies
	// the token's signature, issuer, and audience against the provider's
	// published keys, and returns the extracted claims.
	// Returns domain.ErrTokenExchange when the provider rejects the code or
	// the response carries no usable identity token, and
	// domain.ErrMissingSubject when the verified token has no subject.
	Exchange(ctx context.Context, code string) (*domain.IdentityClaims, error)
}
