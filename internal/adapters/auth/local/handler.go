package local

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"practice-agenda/internal/middleware"
	"practice-agenda/internal/ports/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token,omitempty"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Login godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "invalid credentials"
// @Router /auth/login [post]
func Login(authn auth.Authenticator, ttl time.Duration, secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		token, claims, err := authn.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(ttl),
		})

		writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUser(claims)})
	}
}

// Logout godoc
// @Summary Cerrar sesión
// @Tags auth
// @Success 204
// @Router /auth/logout [post]
func Logout(secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// Me godoc
// @Summary Usuario actual
// @Tags auth
// @Produce json
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "unauthorized"
// @Router /auth/me [get]
func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{User: toUser(claims)})
	}
}

func toUser(c auth.Claims) userResponse {
	return userResponse{ID: c.UserID, Email: c.Email, Name: c.Name}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
