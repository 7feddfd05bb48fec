package jwtverifier

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.Claims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerifier_ValidToken(t *testing.T) {
	v := New(Config{Secret: "test-secret"})

	token := signToken(t, "test-secret", tokenClaims{
		Email: "ana@example.com",
		Role:  "patient",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}, jwt.SigningMethodHS256)

	claims, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" || claims.Role != "patient" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifier_RejectsBadTokens(t *testing.T) {
	v := New(Config{Secret: "test-secret"})

	expired := signToken(t, "test-secret", jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, jwt.SigningMethodHS256)

	wrongKey := signToken(t, "other-secret", jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)

	noExp := signToken(t, "test-secret", jwt.RegisteredClaims{
		Subject: "user-1",
	}, jwt.SigningMethodHS256)

	noSub := signToken(t, "test-secret", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)

	for name, token := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"no exp":    noExp,
		"no sub":    noSub,
		"empty":     "",
		"garbage":   "not.a.token",
	} {
		if _, err := v.Verify(context.Background(), token); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestVerifier_IssuerCheck(t *testing.T) {
	v := New(Config{Secret: "test-secret", Issuer: "identity-svc"})

	good := signToken(t, "test-secret", jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "identity-svc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)
	if _, err := v.Verify(context.Background(), good); err != nil {
		t.Fatalf("expected valid issuer to pass: %v", err)
	}

	bad := signToken(t, "test-secret", jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)
	if _, err := v.Verify(context.Background(), bad); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestVerifier_NotConfigured(t *testing.T) {
	v := New(Config{})
	if _, err := v.Verify(context.Background(), "anything"); err == nil {
		t.Fatalf("expected error when secret missing")
	}
}
