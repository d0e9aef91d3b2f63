package driven

// SessionTokens mints and parses the opaque value carried by the session
// cookie. Sessions are stateless: the token itself is the only session
// record.
type SessionTokens interface {
	// Mint creates a signed session token for the subject.
	Mint(subject string) (string, error)

	// Parse validates a session token and returns the subject it was
	// minted for. Returns domain.ErrUnauthorized for invalid or expired
	// tokens.
	Parse(token string) (subject string, err error)
}

// PersonalNumberHasher one-way hashes a raw personal identity number for
// storage. The raw value must never leave the finalize pipeline.
type PersonalNumberHasher interface {
	Hash(raw string) string
}
