package anamnesis

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"practice-agenda/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/clients/{clientID}/anamnesis", listByClientHandler(svc))
	r.Post("/clients/{clientID}/anamnesis", createHandler(svc))

	r.Get("/anamnesis/{anamnesisID}", getHandler(svc))
	r.Delete("/anamnesis/{anamnesisID}", deleteHandler(svc))
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	ChiefComplaint          string `json:"chief_complaint"`
	MedicalHistory          string `json:"medical_history"`
	CurrentMedicalTreatment string `json:"current_medical_treatment"`
	PreviousProcedures      string `json:"previous_procedures"`
	Medications             string `json:"medications"`
	RecentSymptoms          string `json:"recent_symptoms"`
	PainLocation            string `json:"pain_location"`
	AdditionalObservations  string `json:"additional_observations"`
}

type anamnesisResponse struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	ChiefComplaint          string `json:"chief_complaint"`
	MedicalHistory          string `json:"medical_history"`
	CurrentMedicalTreatment string `json:"current_medical_treatment"`
	PreviousProcedures      string `json:"previous_procedures"`
	Medications             string `json:"medications"`
	RecentSymptoms          string `json:"recent_symptoms"`
	PainLocation            string `json:"pain_location"`
	AdditionalObservations  string `json:"additional_observations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), uid, chi.URLParam(r, "clientID"), CreateInput{
			Title:                   req.Title,
			Description:             req.Description,
			ChiefComplaint:          req.ChiefComplaint,
			MedicalHistory:          req.MedicalHistory,
			CurrentMedicalTreatment: req.CurrentMedicalTreatment,
			PreviousProcedures:      req.PreviousProcedures,
			Medications:             req.Medications,
			RecentSymptoms:          req.RecentSymptoms,
			PainLocation:            req.PainLocation,
			AdditionalObservations:  req.AdditionalObservations,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(a))
	}
}

func listByClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByClient(r.Context(), uid, chi.URLParam(r, "clientID"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]anamnesisResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.GetByID(r.Context(), uid, chi.URLParam(r, "anamnesisID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Delete(r.Context(), uid, chi.URLParam(r, "anamnesisID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "anamnesis not found", http.StatusNotFound)
	case errors.Is(err, ErrClientNotFound):
		http.Error(w, "client not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResponse(a Anamnesis) anamnesisResponse {
	return anamnesisResponse{
		ID:                      a.ID,
		ClientID:                a.ClientID,
		Title:                   a.Title,
		Description:             a.Description,
		ChiefComplaint:          a.ChiefComplaint,
		MedicalHistory:          a.MedicalHistory,
		CurrentMedicalTreatment: a.CurrentMedicalTreatment,
		PreviousProcedures:      a.PreviousProcedures,
		Medications:             a.Medications,
		RecentSymptoms:          a.RecentSymptoms,
		PainLocation:            a.PainLocation,
		AdditionalObservations:  a.AdditionalObservations,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
