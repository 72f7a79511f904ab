package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"practice-agenda/internal/platform/httpclient"
	"practice-agenda/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("remote auth not configured")
	ErrUpstream      = errors.New("remote auth upstream error")
)

const userPath = "/auth/v1/user"

// Config del servicio de auth hospedado.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier preguntándole al servicio remoto
// de quién es el token.
type Verifier struct {
	http   *httpclient.Client
	apiKey string
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	c, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Verifier{http: c, apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	var out userResponse
	err := v.http.DoJSON(ctx, http.MethodGet, userPath, map[string]string{
		"apikey":        v.apiKey,
		"Authorization": "Bearer " + token,
	}, nil, &out)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, auth.ErrInvalidToken
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user id", ErrUpstream)
	}

	name := out.UserMetadata.FullName
	if name == "" {
		name = out.UserMetadata.Name
	}
	return auth.Claims{
		UserID: out.ID,
		Email:  strings.TrimSpace(out.Email),
		Name:   strings.TrimSpace(name),
	}, nil
}
