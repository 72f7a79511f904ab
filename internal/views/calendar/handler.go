package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/middleware"
	"practice-agenda/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la vista del mes. El detalle del día lo monta
// el paquete daydetail.
func RegisterRoutes(r chi.Router, svc *entries.Service, revealInterval time.Duration) {
	r.Get("/calendar", monthHandler(svc, revealInterval))
}

type dayResponse struct {
	Day           int    `json:"day"`
	Date          string `json:"date"`
	HasEntry      bool   `json:"has_entry"`
	Count         int    `json:"count"`
	RevealDelayMS int64  `json:"reveal_delay_ms"`
}

type monthResponse struct {
	Month         string                  `json:"month"` // YYYY-MM
	Previous      string                  `json:"previous"`
	Next          string                  `json:"next"`
	From          string                  `json:"from"`
	To            string                  `json:"to"`
	LeadingBlanks int                     `json:"leading_blanks"`
	Days          []dayResponse           `json:"days"`
	Entries       []entries.EntryResponse `json:"entries"`
}

func monthHandler(svc *entries.Service, revealInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m := New(svc, uid, time.Now().In(svc.Location()), WithRevealInterval(revealInterval))

		var err error
		if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
			year, month, perr := dates.ParseMonth(v)
			if perr != nil {
				http.Error(w, perr.Error(), http.StatusBadRequest)
				return
			}
			err = m.GoTo(r.Context(), year, month)
		} else {
			err = m.Reload(r.Context())
		}
		if err != nil {
			if errors.Is(err, entries.ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toMonthResponse(m.Grid(), m.Entries()))
	}
}

func toMonthResponse(g Grid, items []entries.DayEntry) monthResponse {
	py, pm := dates.AddMonths(g.Year, g.Month, -1)
	ny, nm := dates.AddMonths(g.Year, g.Month, 1)
	from, to := dates.MonthBounds(g.Year, g.Month)

	out := monthResponse{
		Month:         monthKey(g.Year, g.Month),
		Previous:      monthKey(py, pm),
		Next:          monthKey(ny, nm),
		From:          from,
		To:            to,
		LeadingBlanks: g.LeadingBlanks,
		Days:          make([]dayResponse, 0, len(g.Days)),
		Entries:       entries.ToResponses(items),
	}
	for _, d := range g.Days {
		out.Days = append(out.Days, dayResponse{
			Day:           d.Day,
			Date:          d.Date,
			HasEntry:      d.HasEntry,
			Count:         d.Count,
			RevealDelayMS: d.RevealDelay.Milliseconds(),
		})
	}
	return out
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
