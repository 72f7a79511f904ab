package local

import (
	"context"
	"errors"
	"strings"

	"practice-agenda/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

// Operator es la única cuenta de la instalación.
type Operator struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
}

// Authenticator valida la contraseña del operador y emite un token.
// Implementa auth.Authenticator.
type Authenticator struct {
	op     Operator
	tokens *Tokens
}

func NewAuthenticator(op Operator, tokens *Tokens) (*Authenticator, error) {
	op.ID = strings.TrimSpace(op.ID)
	op.Email = strings.TrimSpace(op.Email)
	if op.ID == "" || op.Email == "" || op.PasswordHash == "" {
		return nil, errors.New("operator id, email and password hash are required")
	}
	if tokens == nil {
		return nil, ErrSecretRequired
	}
	if _, err := bcrypt.Cost([]byte(op.PasswordHash)); err != nil {
		return nil, errors.New("operator password hash is not a bcrypt hash")
	}
	return &Authenticator{op: op, tokens: tokens}, nil
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (string, auth.Claims, error) {
	if !strings.EqualFold(strings.TrimSpace(email), a.op.Email) {
		// Mismo costo que con un email válido.
		_ = bcrypt.CompareHashAndPassword([]byte(a.op.PasswordHash), []byte(password))
		return "", auth.Claims{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.op.PasswordHash), []byte(password)); err != nil {
		return "", auth.Claims{}, auth.ErrInvalidCredentials
	}

	claims := auth.Claims{UserID: a.op.ID, Email: a.op.Email, Name: a.op.Name}
	token, err := a.tokens.Issue(claims)
	if err != nil {
		return "", auth.Claims{}, err
	}
	return token, claims, nil
}

// HashPassword genera el hash para OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must have at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
