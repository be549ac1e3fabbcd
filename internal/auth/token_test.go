package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

const testSecret = "a-test-secret-that-is-long-enough"

var testIdentity = Identity{UserID: "65a000000000000000000001", Email: "doc@example.com", Role: models.RoleDoctor}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, err := svc.IssueToken(testIdentity)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	id, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if id != testIdentity {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.IssueToken(testIdentity)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	_, err = NewTokenService(testSecret, time.Hour).VerifyToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired must also be an invalid token, got %v", err)
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, _ := svc.IssueToken(testIdentity)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err := svc.VerifyToken(tampered)
	if !errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected plain ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, _ := NewTokenService(testSecret, time.Hour).IssueToken(testIdentity)
	_, err := NewTokenService("another-secret-that-is-long-enough", time.Hour).VerifyToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := NewTokenService(testSecret, time.Hour).VerifyToken("not-a-token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenIsNotAccessToken(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	refresh, err := svc.IssueRefreshToken(testIdentity)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := svc.VerifyToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := svc.VerifyRefreshToken(refresh); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}

	access, _ := svc.IssueToken(testIdentity)
	if _, err := svc.VerifyRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestRefreshTokenOutlivesAccessToken(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-10 * 24 * time.Hour) }
	refresh, _ := issuer.IssueRefreshToken(testIdentity)

	if _, err := NewTokenService(testSecret, time.Hour).VerifyRefreshToken(refresh); err != nil {
		t.Fatalf("10 day old refresh token should still be valid: %v", err)
	}
}

func TestVerifyToken_RejectsUnknownRole(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, _ := svc.IssueToken(Identity{UserID: "u1", Email: "x@example.com", Role: "client"})
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}

func TestDecodeToken(t *testing.T) {
	issuer := NewTokenService(testSecret, time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _ := issuer.IssueToken(testIdentity)

	id := DecodeToken(token)
	if id == nil || *id != testIdentity {
		t.Fatalf("expected identity from expired token, got %+v", id)
	}
	if DecodeToken("garbage") != nil {
		t.Fatal("expected nil for garbage")
	}
}

func TestIssueToken_NoSecret(t *testing.T) {
	if _, err := NewTokenService("", time.Hour).IssueToken(testIdentity); err == nil {
		t.Fatal("expected error without secret")
	}
}
