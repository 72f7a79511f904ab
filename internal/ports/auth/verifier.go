package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// Authenticator canjea credenciales por un token firmado (modo local).
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, claims Claims, err error)
}
