package domain

// IdentityClaims are the facts extracted from a verified identity token.
// Subject is the only required claim; everything else is best-effort.
type IdentityClaims struct {
	Subject     string
	DisplayName string
	Email       string
	PhoneNumber string

	// PersonalNumber is the raw national identity number as asserted by the
	// provider. It is never persisted or logged; only a keyed hash of it
	// reaches the profile store.
	PersonalNumber string
}

// Providers disagree about which claim carries the personal identity number,
// so each logical field is resolved through an ordered candidate list and the
// first present value wins. The lists are compatibility shims, not protocol.
var (
	displayNameClaimKeys = []string{"name", "preferred_username"}
	emailClaimKeys       = []string{"email"}
	phoneClaimKeys       = []string{"phone_number", "phone"}

	personalNumberClaimKeys = []string{
		"ssn",
		"socialno",
		"http://schemas.grean.id/claims/se/ssn",
		"personal_identity_number",
	}
)

// ExtractIdentityClaims maps a decoded identity-token payload to
// IdentityClaims. A missing or empty "sub" claim returns ErrMissingSubject.
func ExtractIdentityClaims(raw map[string]any) (*IdentityClaims, error) {
	sub := stringClaim(raw, "sub")
	if sub == "" {
		return nil, ErrMissingSubject
	}

	return &IdentityClaims{
		Subject:        sub,
		DisplayName:    firstClaim(raw, displayNameClaimKeys),
		Email:          firstClaim(raw, emailClaimKeys),
		PhoneNumber:    firstClaim(raw, phoneClaimKeys),
		PersonalNumber: firstClaim(raw, personalNumberClaimKeys),
	}, nil
}

// firstClaim returns the first non-empty string value among the candidate
// keys, in order.
func firstClaim(raw map[string]any, keys []string) string {
	for _, key := range keys {
		if v := stringClaim(raw, key); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
