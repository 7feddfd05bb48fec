package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"diabetes-care-backend/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("jwt verifier not configured")
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token invalid")
)

// Config del verificador. Secret normalmente viene de AUTH_JWT_SECRET.
type Config struct {
	Secret string

	// Opcional: issuer esperado. Vacío => no se chequea.
	Issuer string

	// Tolerancia de reloj para exp/nbf. Cero => sin tolerancia.
	Leeway time.Duration
}

// Verifier implementa auth.AuthVerifier con tokens HS256 firmados por el
// servicio de identidad. Se instancia desde main/router.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func New(cfg Config) *Verifier {
	return &Verifier{
		secret: []byte(strings.TrimSpace(cfg.Secret)),
		issuer: strings.TrimSpace(cfg.Issuer),
		leeway: cfg.Leeway,
	}
}

func (v *Verifier) IsConfigured() bool {
	return v != nil && len(v.secret) > 0
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !v.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(v.leeway))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return auth.Claims{}, errors.New("token missing sub claim")
	}

	return auth.Claims{
		UserID: userID,
		Email:  strings.TrimSpace(claims.Email),
		Role:   strings.TrimSpace(claims.Role),
	}, nil
}
