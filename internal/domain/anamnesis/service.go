package anamnesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"practice-agenda/internal/platform/textclean"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("anamnesis not found")
)

// ClientOwnership expone el owner de un cliente.
// Se usa para evitar ciclos de imports entre módulos (clients <-> anamnesis).
type ClientOwnership interface {
	OwnerOf(ctx context.Context, clientID string) (string, error)
}

type Service struct {
	repo    Repository
	clients ClientOwnership
	now     func() time.Time
}

func NewService(repo Repository, clients ClientOwnership) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		now:     time.Now,
	}
}

type CreateInput struct {
	Title       string
	Description string

	ChiefComplaint          string
	MedicalHistory          string
	CurrentMedicalTreatment string
	PreviousProcedures      string
	Medications             string
	RecentSymptoms          string
	PainLocation            string
	AdditionalObservations  string
}

func (s *Service) Create(ctx context.Context, ownerUserID, clientID string, in CreateInput) (Anamnesis, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Anamnesis{}, ErrInvalidInput
	}
	if err := s.checkClient(ctx, ownerUserID, clientID); err != nil {
		return Anamnesis{}, err
	}

	var tf textclean.Fields
	title := tf.Text("title", in.Title)
	if title == "" && tf.Err() == nil {
		return Anamnesis{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	now := s.now()
	a := Anamnesis{
		ID:                      uuid.NewString(),
		OwnerUserID:             ownerUserID,
		ClientID:                strings.TrimSpace(clientID),
		Title:                   title,
		Description:             tf.Text("description", in.Description),
		ChiefComplaint:          tf.Text("chief_complaint", in.ChiefComplaint),
		MedicalHistory:          tf.Text("medical_history", in.MedicalHistory),
		CurrentMedicalTreatment: tf.Text("current_medical_treatment", in.CurrentMedicalTreatment),
		PreviousProcedures:      tf.Text("previous_procedures", in.PreviousProcedures),
		Medications:             tf.Text("medications", in.Medications),
		RecentSymptoms:          tf.Text("recent_symptoms", in.RecentSymptoms),
		PainLocation:            tf.Text("pain_location", in.PainLocation),
		AdditionalObservations:  tf.Text("additional_observations", in.AdditionalObservations),
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := tf.Err(); err != nil {
		return Anamnesis{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Anamnesis{}, err
	}
	return a, nil
}

// ListByClient devuelve las fichas del cliente, la más reciente primero.
func (s *Service) ListByClient(ctx context.Context, ownerUserID, clientID string) ([]Anamnesis, error) {
	if err := s.checkClient(ctx, ownerUserID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListByClient(ctx, ownerUserID, strings.TrimSpace(clientID))
}

func (s *Service) GetByID(ctx context.Context, ownerUserID, id string) (Anamnesis, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Anamnesis{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Anamnesis{}, err
	}
	if a.OwnerUserID != ownerUserID {
		return Anamnesis{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	if _, err := s.GetByID(ctx, ownerUserID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DeleteByClient borra todas las fichas de un cliente (baja del cliente).
func (s *Service) DeleteByClient(ctx context.Context, ownerUserID, clientID string) error {
	return s.repo.DeleteByClient(ctx, ownerUserID, strings.TrimSpace(clientID))
}

// ErrClientNotFound se devuelve cuando el cliente no existe o es de otro owner.
var ErrClientNotFound = errors.New("client not found")

func (s *Service) checkClient(ctx context.Context, ownerUserID, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if s.clients == nil {
		return nil
	}
	owner, err := s.clients.OwnerOf(ctx, clientID)
	if err != nil || owner != ownerUserID {
		return ErrClientNotFound
	}
	return nil
}
