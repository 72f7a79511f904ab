package middleware

import (
	"context"
	"net/http"
	"strings"

	"practice-agenda/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// SessionCookie es la cookie que setea /auth/login en modo local.
const SessionCookie = "agenda_session"

// AuthContext:
// - Si verifier != nil y viene Bearer token (o la cookie de sesión) => Verify() y setea claims.
// - Si verifier == nil => modo dev: si viene header X-Debug-User-ID => setea claims.
// - Si no hay claims, el request sigue igual; RequireUser decide el 401.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), auth.Claims{UserID: uid})))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					token = strings.TrimSpace(c.Value)
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireUser corta con 401 si el request no trae un usuario.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// UserID devuelve el operador autenticado, si hay.
func UserID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return "", false
	}
	return c.UserID, true
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
