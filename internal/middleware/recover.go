package middleware

import (
	"net/http"
	"runtime/debug"

	"practice-agenda/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recover reemplaza a chimw.Recoverer para que el panic salga por nuestro logger.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"panic":      rec,
					"stack":      string(debug.Stack()),
				})
				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
