package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

// Ensure interface compliance
var (
	_ driven.SessionTokens        = (*Sessions)(nil)
	_ driven.PersonalNumberHasher = (*PersonalNumberHasher)(nil)
)

const sessionIssuer = "vasa-auth"

// DeriveKey derives a purpose-bound 32-byte key from the master secret via
// HKDF-SHA256. Each consumer passes a distinct info string so the session
// signing key, the state signing key, and the hash pepper are independent
// even though they share one configured secret.
func DeriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// Sessions mints and parses session cookie tokens as HS256 JWTs.
// The token is the entire session record: nothing is stored server-side.
type Sessions struct {
	signingKey []byte
	ttl        time.Duration
}

// NewSessions creates a session token adapter. The signing key is derived
// from the master secret, never used raw.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	key, err := DeriveKey(secret, "session-signing")
	if err != nil {
		return nil, err
	}
	return &Sessions{signingKey: key, ttl: ttl}, nil
}

// Mint creates a signed session token for the subject
func (s *Sessions) Mint(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Parse validates a session token and returns its subject
func (s *Sessions) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}

	return claims.Subject, nil
}

// PersonalNumberHasher produces the one-way HMAC-SHA256 hash stored in
// place of a raw personal identity number.
type PersonalNumberHasher struct {
	pepper []byte
}

// NewPersonalNumberHasher creates a hasher keyed off the master secret.
func NewPersonalNumberHasher(secret string) (*PersonalNumberHasher, error) {
	pepper, err := DeriveKey(secret, "personal-number-pepper")
	if err != nil {
		return nil, err
	}
	return &PersonalNumberHasher{pepper: pepper}, nil
}

// Hash normalizes and hashes a raw personal number. Formatting variants of
// the same number ("19500101-1234" vs "195001011234") hash identically.
func (h *PersonalNumberHasher) Hash(raw string) string {
	normalized := strings.NewReplacer("-", "", "+", "", " ", "").Replace(strings.TrimSpace(raw))
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}
