package security

import (
	"errors"
	"testing"
	"time"

	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

func TestSignAndParsePrincipal(t *testing.T) {
	signer, err := NewEphemeralJWTSigner("", "identity", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	raw, err := signer.SignPrincipal(domain.Principal{Subject: "u-1", Email: "ana@example.com", Superuser: true, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	pemKey, err := signer.PublicKeyPEM()
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	verifier, err := NewJWTVerifier(pemKey, "identity")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	p, err := verifier.ParsePrincipal(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Subject != "u-1" || p.Email != "ana@example.com" || !p.Superuser || p.SessionID != "s-1" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if time.Until(p.ExpiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %s", p.ExpiresAt)
	}
}

func TestParsePrincipalRejectsExpiredAndForeignTokens(t *testing.T) {
	signer, err := NewEphemeralJWTSigner("", "", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	expired, _ := signer.SignPrincipal(domain.Principal{Subject: "u-1", ExpiresAt: time.Now().Add(-time.Hour)})
	if _, err := signer.Verifier().ParsePrincipal(expired); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired token, got %v", err)
	}

	other, _ := NewEphemeralJWTSigner("", "", time.Hour)
	foreign, _ := other.SignPrincipal(domain.Principal{Subject: "u-2"})
	if _, err := signer.Verifier().ParsePrincipal(foreign); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign key, got %v", err)
	}

	if _, err := signer.Verifier().ParsePrincipal("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage, got %v", err)
	}
}

func TestSignerMintsSessionID(t *testing.T) {
	signer, _ := NewEphemeralJWTSigner("", "", time.Hour)
	raw, _ := signer.SignPrincipal(domain.Principal{Email: "ana@example.com"})
	p, err := signer.Verifier().ParsePrincipal(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.SessionID == "" {
		t.Fatalf("expected a generated session id")
	}
}

func TestNewJWTVerifierRequiresKey(t *testing.T) {
	if _, err := NewJWTVerifier("", ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := NewJWTVerifier("garbage", ""); err == nil {
		t.Fatalf("expected error for malformed key")
	}
}
