package statecodec

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
)

// Ensure SelfEncoded implements the interface.
var _ driven.StateCodec = (*SelfEncoded)(nil)

// SelfEncoded carries the return URL inside the state token itself:
// base64url(payload) "." base64url(HMAC-SHA256(payload)). No server-side
// storage is involved, so single-use cannot be enforced; replay of a
// captured callback URL is bounded by the short expiry instead.
type SelfEncoded struct {
	key []byte
	ttl time.Duration
}

// statePayload is the signed content of a self-encoded state token.
type statePayload struct {
	ReturnURL string `json:"r"`
	Nonce     string `json:"n"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// NewSelfEncoded creates a self-encoding state codec signing with key.
func NewSelfEncoded(key []byte, ttl time.Duration) *SelfEncoded {
	if ttl == 0 {
		ttl = DefaultStateTTL
	}
	return &SelfEncoded{key: key, ttl: ttl}
}

// Bind encodes and signs the binding into the state token.
func (c *SelfEncoded) Bind(ctx context.Context, returnURL string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	now := time.Now()
	payload, err := json.Marshal(statePayload{
		ReturnURL: returnURL,
		Nonce:     hex.EncodeToString(nonce),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(c.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded), nil
}

// Unbind verifies the signature and expiry and returns the embedded return
// URL.
func (c *SelfEncoded) Unbind(ctx context.Context, state string) (string, error) {
	encoded, sig, ok := strings.Cut(state, ".")
	if !ok {
		return "", domain.ErrInvalidState
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return "", domain.ErrInvalidState
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", domain.ErrInvalidState
	}

	var payload statePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", domain.ErrInvalidState
	}
	if time.Now().Unix() > payload.ExpiresAt {
		return "", domain.ErrInvalidState
	}

	return payload.ReturnURL, nil
}

func (c *SelfEncoded) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
