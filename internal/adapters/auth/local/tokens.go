package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"practice-agenda/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 12 * time.Hour

var ErrSecretRequired = errors.New("jwt secret is required")

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Tokens emite y verifica tokens HS256.
// Implementa auth.AuthVerifier.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret, issuer string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL devuelve la vida de los tokens emitidos.
func (t *Tokens) TTL() time.Duration { return t.ttl }

func (t *Tokens) Issue(c auth.Claims) (string, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return "", errors.New("user id required")
	}
	now := t.now()

	claims := tokenClaims{
		Email: c.Email,
		Name:  c.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) Verify(ctx context.Context, raw string) (auth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	return auth.Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
