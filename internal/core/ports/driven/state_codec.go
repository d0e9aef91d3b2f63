package driven

import "context"

// StateCodec binds a return URL to the CSRF state token round-tripped
// through the identity provider, and recovers it when the callback arrives.
// Exactly one implementation is selected at startup and used for both ends
// of the flow; mixing strategies per request is what the codec exists to
// prevent.
type StateCodec interface {
	// Bind mints an unguessable state token carrying (or referencing) the
	// return URL.
	Bind(ctx context.Context, returnURL string) (state string, err error)

	// Unbind validates a callback state token and returns the bound return
	// URL. Returns domain.ErrInvalidState for unknown, expired, replayed,
	// or tampered states. A state that unbinds once must not unbind again.
	Unbind(ctx context.Context, state string) (returnURL string, err error)
}
