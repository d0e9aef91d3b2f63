package domain

import (
	"net/url"
	"strings"
	"time"
)

// LoginAttempt binds a CSRF state token to the return URL the user asked for.
// It lives only for the redirect round trip to the identity provider and is
// consumed (single-use) when the callback is validated.
type LoginAttempt struct {
	State     string    `json:"state"`
	ReturnURL string    `json:"return_url"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the attempt has outlived its TTL
func (a *LoginAttempt) IsExpired() bool {
	return time.Now().After(a.ExpiresAt)
}

// ResolveReturnURL validates a requested post-login destination against the
// registered application domain. Accepted: absolute http(s) URLs whose host
// is appDomain or a subdomain of it, and bare paths (rewritten onto
// appDomain). Anything else resolves to defaultURL so the login flow can
// never be used as an open redirect.
func ResolveReturnURL(candidate, appDomain, defaultURL string) string {
	if candidate == "" {
		return defaultURL
	}

	if strings.HasPrefix(candidate, "/") && !strings.HasPrefix(candidate, "//") {
		return "https://" + appDomain + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return defaultURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return defaultURL
	}

	host := strings.ToLower(u.Hostname())
	// Suffix alone is not enough: "evil-example.com" must not pass for
	// "example.com", so the match is exact host or dot-separated subdomain.
	if host == appDomain || strings.HasSuffix(host, "."+appDomain) {
		return u.String()
	}

	return defaultURL
}
