package entries

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"practice-agenda/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas "crudas" de registros. El calendario y el
// detalle del día viven en internal/views.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/consultations", createConsultationHandler(svc))
	r.Get("/entries", listRangeHandler(svc))
	r.Get("/entries/{entryID}", getEntryHandler(svc))
	r.Get("/services", listServicesHandler())
}

type createConsultationRequest struct {
	Date             string `json:"date"`
	ClientID         string `json:"client_id"`
	Procedure        string `json:"procedure"`
	ConsultationType string `json:"consultation_type"`
	Address          string `json:"address"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	Description      string `json:"description"`
}

// EntryResponse es la representación JSON de un DayEntry.
// Los campos de la forma que no aplica se omiten.
type EntryResponse struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`

	Description string `json:"description,omitempty"`

	Mood    string `json:"mood,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service,omitempty"`

	ClientID              string     `json:"client_id,omitempty"`
	ClientName            string     `json:"client_name,omitempty"`
	Procedure             string     `json:"procedure,omitempty"`
	ConsultationType      string     `json:"consultation_type,omitempty"`
	ConsultationTypeLabel string     `json:"consultation_type_label,omitempty"`
	Address               string     `json:"address,omitempty"`
	StartTime             *time.Time `json:"start_time,omitempty"`
	EndTime               *time.Time `json:"end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToResponse(e DayEntry) EntryResponse {
	out := EntryResponse{
		ID:        e.ID,
		Date:      e.Date,
		Kind:      e.Kind,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}

	switch {
	case e.Consultation != nil:
		c := e.Consultation
		out.Title = c.Title()
		out.Description = c.Description
		out.ClientID = c.ClientID
		out.ClientName = c.ClientName
		out.Procedure = c.Procedure
		out.ConsultationType = string(c.Type)
		out.ConsultationTypeLabel = c.Type.Label()
		out.Address = c.Address
		if !c.StartTime.IsZero() {
			st := c.StartTime
			out.StartTime = &st
		}
		if !c.EndTime.IsZero() {
			et := c.EndTime
			out.EndTime = &et
		}
	case e.Note != nil:
		n := e.Note
		out.Title = n.Title
		out.Description = n.Description
		out.Mood = n.Mood
		out.Phone = n.Phone
		out.Service = string(n.Service)
	}
	return out
}

func ToResponses(items []DayEntry) []EntryResponse {
	out := make([]EntryResponse, 0, len(items))
	for _, e := range items {
		out = append(out, ToResponse(e))
	}
	return out
}

func createConsultationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createConsultationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.CreateConsultation(r.Context(), uid, ConsultationInput{
			Date:             req.Date,
			ClientID:         req.ClientID,
			Procedure:        req.Procedure,
			ConsultationType: req.ConsultationType,
			Address:          req.Address,
			StartTime:        req.StartTime,
			EndTime:          req.EndTime,
			Description:      req.Description,
		})
		if err != nil {
			WriteError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ToResponse(e))
	}
}

func listRangeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		items, err := svc.ListRange(r.Context(), uid, q.Get("from"), q.Get("to"))
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponses(items))
	}
}

func getEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		e, err := svc.GetByID(r.Context(), uid, chi.URLParam(r, "entryID"))
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToResponse(e))
	}
}

type serviceOption struct {
	Value string `json:"value"`
}

type consultationTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type catalogResponse struct {
	Services          []serviceOption          `json:"services"`
	ConsultationTypes []consultationTypeOption `json:"consultation_types"`
}

// listServicesHandler expone los catálogos fijos de los formularios.
func listServicesHandler() http.HandlerFunc {
	out := catalogResponse{}
	for _, s := range OfferedServices {
		out.Services = append(out.Services, serviceOption{Value: string(s)})
	}
	for _, t := range []ConsultationType{ConsultationFirstVisit, ConsultationFollowUp, ConsultationLastVisit, ConsultationOther} {
		out.ConsultationTypes = append(out.ConsultationTypes, consultationTypeOption{Value: string(t), Label: t.Label()})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, out)
	}
}

// WriteError traduce los errores del módulo a status HTTP. Lo reusan las vistas.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
