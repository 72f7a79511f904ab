package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"practice-agenda/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, roster *Roster) {
	r.Get("/clients", listHandler(roster))
	r.Post("/clients", createHandler(roster))

	r.Get("/clients/{clientID}", getHandler(roster))
	r.Patch("/clients/{clientID}", updateHandler(roster))
	r.Delete("/clients/{clientID}", deleteHandler(roster))

	r.Get("/clients/{clientID}/report.pdf", reportHandler(roster))
}

type createClientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	Address   string `json:"address"`
}

type updateClientRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

type rowResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	BirthDate *string `json:"birth_date"`
	Address   string  `json:"address"`

	TotalEntries         int     `json:"total_entries"`
	LastEntryDate        *string `json:"last_entry_date"`
	NextConsultationDate *string `json:"next_consultation_date"`
	NextConsultationTime *string `json:"next_consultation_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type mutationResponse struct {
	Client  *rowResponse  `json:"client,omitempty"`
	Clients []rowResponse `json:"clients"`
}

func listHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := roster.Search(r.Context(), uid, r.URL.Query().Get("q"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toRowResponses(rows))
	}
}

func createHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, rows, err := roster.Add(r.Context(), uid, CreateInput{
			Name:      req.Name,
			Phone:     req.Phone,
			Email:     req.Email,
			BirthDate: req.BirthDate,
			Address:   req.Address,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		created := toRowResponse(Row{Client: c})
		writeJSON(w, http.StatusCreated, mutationResponse{Client: &created, Clients: toRowResponses(rows)})
	}
}

func getHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		row, err := roster.Row(r.Context(), uid, chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRowResponse(row))
	}
}

func updateHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		// birth_date admite null (= limpiar); hay que detectar presencia.
		var raw map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd := PatchBirthDate{}
		if v, exists := raw["birth_date"]; exists {
			bd.Present = true
			delete(raw, "birth_date")
			if string(v) != "null" {
				var s string
				if err := json.Unmarshal(v, &s); err != nil {
					http.Error(w, "birth_date must be YYYY-MM-DD or null", http.StatusBadRequest)
					return
				}
				bd.Value = &s
			}
		}

		var req updateClientRequest
		{
			b, _ := json.Marshal(raw)
			d := json.NewDecoder(bytes.NewReader(b))
			d.DisallowUnknownFields()
			if err := d.Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}

		c, rows, err := roster.Update(r.Context(), uid, chi.URLParam(r, "clientID"), UpdateInput{
			Name:      req.Name,
			Phone:     req.Phone,
			Email:     req.Email,
			BirthDate: bd,
			Address:   req.Address,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		updated := toRowResponse(Row{Client: c})
		writeJSON(w, http.StatusOK, mutationResponse{Client: &updated, Clients: toRowResponses(rows)})
	}
}

func deleteHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := roster.Remove(r.Context(), uid, chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Clients: toRowResponses(rows)})
	}
}

func reportHandler(roster *Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		clientID := chi.URLParam(r, "clientID")

		// Se arma en memoria para poder responder un error limpio si falla.
		var buf bytes.Buffer
		if err := roster.ExportPDF(r.Context(), uid, clientID, &buf); err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ficha-%s.pdf"`, clientID))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRowResponses(rows []Row) []rowResponse {
	out := make([]rowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, toRowResponse(r))
	}
	return out
}

func toRowResponse(r Row) rowResponse {
	out := rowResponse{
		ID:                   r.ID,
		Name:                 r.Name,
		Phone:                r.Phone,
		Email:                r.Email,
		Address:              r.Address,
		TotalEntries:         r.TotalEntries,
		LastEntryDate:        optional(r.LastEntryDate),
		NextConsultationDate: optional(r.NextConsultationDate),
		NextConsultationTime: optional(r.NextConsultationTime),
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.BirthDate != nil {
		s := r.BirthDate.Format("2006-01-02")
		out.BirthDate = &s
	}
	return out
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
