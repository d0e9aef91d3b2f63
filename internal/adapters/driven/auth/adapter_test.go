package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/auction-man/vasa-auth/internal/core/domain"
)

func TestSessions_MintAndParse(t *testing.T) {
	sessions, err := NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	token, err := sessions.Mint("bankid-subject-1")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if token == "" {
		t.Fatal("Mint() returned empty token")
	}

	subject, err := sessions.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if subject != "bankid-subject-1" {
		t.Errorf("Parse() subject = %q, want %q", subject, "bankid-subject-1")
	}
}

func TestSessions_ParseRejectsGarbage(t *testing.T) {
	sessions, err := NewSessions("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := sessions.Parse(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("Parse(%q) error = %v, want ErrUnauthorized", token, err)
		}
	}
}

func TestSessions_ParseRejectsExpired(t *testing.T) {
	sessions, err := NewSessions("test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	token, err := sessions.Mint("bankid-subject-1")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := sessions.Parse(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
	}
}

func TestSessions_ParseRejectsWrongKey(t *testing.T) {
	a, err := NewSessions("secret-a", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}
	b, err := NewSessions("secret-b", time.Hour)
	if err != nil {
		t.Fatalf("NewSessions() error = %v", err)
	}

	token, err := a.Mint("bankid-subject-1")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if _, err := b.Parse(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Parse() error = %v, want ErrUnauthorized", err)
	}
}

func TestPersonalNumberHasher_NormalizesFormatting(t *testing.T) {
	hasher, err := NewPersonalNumberHasher("test-secret")
	if err != nil {
		t.Fatalf("NewPersonalNumberHasher() error = %v", err)
	}

	base := hasher.Hash("195001011234")
	for _, variant := range []string{
		"19500101-1234",
		"19500101 1234",
		" 195001011234 ",
		"500101+1234",
	} {
		if variant == "500101+1234" {
			// Century-marker form is a different normalized string; it
			// should NOT collide with the twelve-digit form.
			if hasher.Hash(variant) == base {
				t.Errorf("Hash(%q) unexpectedly equals twelve-digit hash", variant)
			}
			continue
		}
		if got := hasher.Hash(variant); got != base {
			t.Errorf("Hash(%q) = %q, want %q", variant, got, base)
		}
	}
}

func TestPersonalNumberHasher_KeyedOutput(t *testing.T) {
	a, err := NewPersonalNumberHasher("secret-a")
	if err != nil {
		t.Fatalf("NewPersonalNumberHasher() error = %v", err)
	}
	b, err := NewPersonalNumberHasher("secret-b")
	if err != nil {
		t.Fatalf("NewPersonalNumberHasher() error = %v", err)
	}

	if a.Hash("195001011234") == b.Hash("195001011234") {
		t.Error("hashes under different secrets should differ")
	}
	if a.Hash("195001011234") == "195001011234" {
		t.Error("hash must not equal the raw input")
	}
}

func TestDeriveKey_PurposeSeparation(t *testing.T) {
	a, err := DeriveKey("secret", "session-signing")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	b, err := DeriveKey("secret", "personal-number-pepper")
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if string(a) == string(b) {
		t.Error("keys for different purposes should differ")
	}
	if len(a) != 32 || len(b) != 32 {
		t.Errorf("derived key lengths = %d, %d, want 32", len(a), len(b))
	}
}
