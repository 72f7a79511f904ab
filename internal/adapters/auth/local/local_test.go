package local

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"practice-agenda/internal/middleware"
	"practice-agenda/internal/ports/auth"

	"golang.org/x/crypto/bcrypt"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tk, err := NewTokens("test-secret", "agenda", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tk
}

func newTestAuthenticator(t *testing.T, password string) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a, err := NewAuthenticator(Operator{
		ID:           "op-1",
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: string(hash),
	}, newTestTokens(t))
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

func TestTokens_IssueAndVerify(t *testing.T) {
	tk := newTestTokens(t)

	raw, err := tk.Issue(auth.Claims{UserID: "op-1", Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := tk.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.UserID != "op-1" || got.Email != "ana@example.com" || got.Name != "Ana" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	tk := newTestTokens(t)
	issued := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	tk.now = func() time.Time { return issued }

	raw, err := tk.Issue(auth.Claims{UserID: "op-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tk.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := tk.Verify(context.Background(), raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokens_RejectsOtherSecretAndIssuer(t *testing.T) {
	tk := newTestTokens(t)
	raw, _ := tk.Issue(auth.Claims{UserID: "op-1"})

	other, _ := NewTokens("another-secret", "agenda", time.Hour)
	if _, err := other.Verify(context.Background(), raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for other secret, got %v", err)
	}

	otherIssuer, _ := NewTokens("test-secret", "someone-else", time.Hour)
	if _, err := otherIssuer.Verify(context.Background(), raw); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for other issuer, got %v", err)
	}

	if _, err := tk.Verify(context.Background(), "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestNewTokens_RequiresSecret(t *testing.T) {
	if _, err := NewTokens("  ", "agenda", 0); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected ErrSecretRequired, got %v", err)
	}
}

func TestAuthenticator_Login(t *testing.T) {
	a := newTestAuthenticator(t, "correct horse")

	token, claims, err := a.Login(context.Background(), " ANA@example.com ", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || claims.UserID != "op-1" {
		t.Fatalf("unexpected login result token=%q claims=%+v", token, claims)
	}

	verified, err := a.tokens.Verify(context.Background(), token)
	if err != nil || verified.UserID != "op-1" {
		t.Fatalf("issued token does not verify: %v %+v", err, verified)
	}

	if _, _, err := a.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := a.Login(context.Background(), "bob@example.com", "correct horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong email, got %v", err)
	}
}

func TestNewAuthenticator_RejectsPlainPassword(t *testing.T) {
	_, err := NewAuthenticator(Operator{ID: "op-1", Email: "a@b.c", PasswordHash: "plain"}, newTestTokens(t))
	if err == nil {
		t.Fatalf("expected error for non-bcrypt hash")
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	h, err := HashPassword("long enough")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("long enough")) != nil {
		t.Fatalf("hash does not match password")
	}
}

func TestLoginHandler_SetsCookie(t *testing.T) {
	a := newTestAuthenticator(t, "correct horse")
	h := Login(a, time.Hour, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@example.com","password":"correct horse"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected session cookie to be set")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@example.com","password":"nope"}`))
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutHandler_ClearsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	Logout(false).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookie || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}
