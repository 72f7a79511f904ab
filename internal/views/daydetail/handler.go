package daydetail

import (
	"encoding/json"
	"errors"
	"net/http"

	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/middleware"
	"practice-agenda/internal/platform/dates"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *entries.Service) {
	r.Get("/calendar/{date}", getDayHandler(svc))
	r.Post("/calendar/{date}/notes", addNoteHandler(svc))
	r.Patch("/calendar/{date}/entries/{entryID}", saveEditHandler(svc))
	r.Delete("/calendar/{date}/entries/{entryID}", deleteHandler(svc))
}

type dayResponse struct {
	Date    string `json:"date"`
	Empty   bool   `json:"empty"`
	Entries []Item `json:"entries"`
}

type addNoteRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Mood        string `json:"mood"`
	Phone       string `json:"phone"`
	Service     string `json:"service"`
}

// editRequest: nil = dejar el valor actual del borrador.
type editRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Mood        *string `json:"mood"`
	Phone       *string `json:"phone"`
	Service     *string `json:"service"`

	Procedure        *string `json:"procedure"`
	ConsultationType *string `json:"consultation_type"`
	Address          *string `json:"address"`
	StartTime        *string `json:"start_time"`
	EndTime          *string `json:"end_time"`
}

func (req editRequest) apply(f Form) Form {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&f.Title, req.Title)
	set(&f.Description, req.Description)
	set(&f.Mood, req.Mood)
	set(&f.Phone, req.Phone)
	set(&f.Service, req.Service)
	set(&f.Procedure, req.Procedure)
	set(&f.ConsultationType, req.ConsultationType)
	set(&f.Address, req.Address)
	set(&f.StartTime, req.StartTime)
	set(&f.EndTime, req.EndTime)
	return f
}

func (req editRequest) mixesKinds(kind entries.Kind) bool {
	if kind == entries.KindConsultation {
		return req.Title != nil || req.Mood != nil || req.Phone != nil || req.Service != nil
	}
	return req.Procedure != nil || req.ConsultationType != nil || req.Address != nil ||
		req.StartTime != nil || req.EndTime != nil
}

func getDayHandler(svc *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m := New(svc, uid)
		if err := m.Load(r.Context(), chi.URLParam(r, "date")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDayResponse(m))
	}
}

func addNoteHandler(svc *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date := chi.URLParam(r, "date")
		if !dates.Valid(date) {
			http.Error(w, dates.ErrInvalidDate.Error(), http.StatusBadRequest)
			return
		}

		var req addNoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if _, err := svc.CreateNote(r.Context(), uid, entries.NoteInput{
			Date:        date,
			Title:       req.Title,
			Description: req.Description,
			Mood:        req.Mood,
			Phone:       req.Phone,
			Service:     req.Service,
		}); err != nil {
			writeError(w, err)
			return
		}

		m := New(svc, uid)
		if err := m.Load(r.Context(), date); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDayResponse(m))
	}
}

func saveEditHandler(svc *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req editRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m := New(svc, uid)
		if err := m.Load(r.Context(), chi.URLParam(r, "date")); err != nil {
			writeError(w, err)
			return
		}

		id := chi.URLParam(r, "entryID")
		form, err := m.BeginEdit(id)
		if err != nil {
			writeError(w, err)
			return
		}
		for _, e := range m.Entries() {
			if e.ID == id && req.mixesKinds(e.Kind) {
				http.Error(w, "fields do not match the entry kind", http.StatusBadRequest)
				return
			}
		}

		if err := m.SaveEdit(r.Context(), id, req.apply(form)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDayResponse(m))
	}
}

func deleteHandler(svc *entries.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m := New(svc, uid)
		if err := m.Load(r.Context(), chi.URLParam(r, "date")); err != nil {
			writeError(w, err)
			return
		}

		// El DELETE es la confirmación; el pedido previo lo hace el cliente.
		if err := m.RequestDelete(chi.URLParam(r, "entryID")); err != nil {
			writeError(w, err)
			return
		}
		if err := m.ConfirmDelete(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDayResponse(m))
	}
}

func toDayResponse(m *Model) dayResponse {
	return dayResponse{
		Date:    m.Date(),
		Empty:   m.Empty(),
		Entries: m.Items(),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dates.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEntryNotLoaded):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, ErrEditInProgress), errors.Is(err, ErrNotEditing), errors.Is(err, ErrNoPendingDelete):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		entries.WriteError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
