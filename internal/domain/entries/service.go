package entries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"practice-agenda/internal/platform/dates"
	"practice-agenda/internal/platform/textclean"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("entry not found")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// ClientDirectory resuelve el nombre de un cliente del owner.
// Lo implementa clients.Service; se define acá para no importar clients.
type ClientDirectory interface {
	ClientName(ctx context.Context, ownerUserID, clientID string) (string, error)
}

type Service struct {
	repo    Repository
	clients ClientDirectory
	loc     *time.Location
	now     func() time.Time
}

// NewService crea el servicio. loc es la zona horaria del consultorio;
// se usa para combinar fecha + hora de los atendimentos.
func NewService(repo Repository, clients ClientDirectory, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:    repo,
		clients: clients,
		loc:     loc,
		now:     time.Now,
	}
}

// Location devuelve la zona horaria del consultorio.
func (s *Service) Location() *time.Location { return s.loc }

type NoteInput struct {
	Date        string
	Title       string
	Description string
	Mood        string
	Phone       string
	Service     string
}

func (s *Service) CreateNote(ctx context.Context, ownerUserID string, in NoteInput) (DayEntry, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return DayEntry{}, ErrInvalidInput
	}
	date := strings.TrimSpace(in.Date)
	if !dates.Valid(date) {
		return DayEntry{}, invalid(dates.ErrInvalidDate.Error())
	}

	var tf textclean.Fields
	n := Note{
		Title:       tf.Text("title", in.Title),
		Description: tf.Text("description", in.Description),
		Mood:        tf.Text("mood", in.Mood),
		Phone:       tf.Text("phone", in.Phone),
		Service:     OfferedService(tf.Text("service", in.Service)),
	}
	if err := tf.Err(); err != nil {
		return DayEntry{}, invalid(err.Error())
	}
	if err := validateNote(n); err != nil {
		return DayEntry{}, err
	}

	now := s.now()
	e := DayEntry{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Date:        date,
		Kind:        KindNote,
		Note:        &n,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return DayEntry{}, err
	}
	return e, nil
}

type ConsultationInput struct {
	Date             string
	ClientID         string
	Procedure        string
	ConsultationType string
	Address          string
	StartTime        string // HH:MM o RFC3339
	EndTime          string // HH:MM o RFC3339
	Description      string
}

func (s *Service) CreateConsultation(ctx context.Context, ownerUserID string, in ConsultationInput) (DayEntry, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return DayEntry{}, ErrInvalidInput
	}
	date := strings.TrimSpace(in.Date)
	if !dates.Valid(date) {
		return DayEntry{}, invalid(dates.ErrInvalidDate.Error())
	}

	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return DayEntry{}, invalid("client_id is required")
	}
	typ, ok := ParseConsultationType(in.ConsultationType)
	if !ok {
		return DayEntry{}, invalid("consultation_type must be one of first_visit, follow_up, last_visit, other")
	}

	start, err := s.parseClock(date, in.StartTime)
	if err != nil {
		return DayEntry{}, invalid("start_time: " + err.Error())
	}
	end, err := s.parseClock(date, in.EndTime)
	if err != nil {
		return DayEntry{}, invalid("end_time: " + err.Error())
	}

	var tf textclean.Fields
	c := Consultation{
		ClientID:    clientID,
		Procedure:   tf.Text("procedure", in.Procedure),
		Type:        typ,
		Address:     tf.Text("address", in.Address),
		StartTime:   start,
		EndTime:     end,
		Description: tf.Text("description", in.Description),
	}
	if err := tf.Err(); err != nil {
		return DayEntry{}, invalid(err.Error())
	}
	if err := validateConsultation(c); err != nil {
		return DayEntry{}, err
	}

	if s.clients == nil {
		return DayEntry{}, errors.New("client directory not configured")
	}
	name, err := s.clients.ClientName(ctx, ownerUserID, clientID)
	if err != nil {
		return DayEntry{}, invalid("client not found")
	}
	c.ClientName = name

	now := s.now()
	e := DayEntry{
		ID:           uuid.NewString(),
		OwnerUserID:  ownerUserID,
		Date:         date,
		Kind:         KindConsultation,
		Consultation: &c,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return DayEntry{}, err
	}
	return e, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
// Los campos de nota y de atendimento no se mezclan; mandar campos de la
// otra forma es un error de validación.
type UpdateInput struct {
	Description *string

	// nota
	Title   *string
	Mood    *string
	Phone   *string
	Service *string

	// atendimento
	Procedure        *string
	ConsultationType *string
	Address          *string
	StartTime        *string
	EndTime          *string
}

func (in UpdateInput) hasNoteFields() bool {
	return in.Title != nil || in.Mood != nil || in.Phone != nil || in.Service != nil
}

func (in UpdateInput) hasConsultationFields() bool {
	return in.Procedure != nil || in.ConsultationType != nil || in.Address != nil ||
		in.StartTime != nil || in.EndTime != nil
}

// Update aplica la edición y refresca updated_at.
func (s *Service) Update(ctx context.Context, ownerUserID, id string, in UpdateInput) (DayEntry, error) {
	e, err := s.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return DayEntry{}, err
	}

	var tf textclean.Fields
	switch e.Kind {
	case KindConsultation:
		if in.hasNoteFields() {
			return DayEntry{}, invalid("note fields cannot be set on a consultation")
		}
		c := *e.Consultation
		if in.Procedure != nil {
			c.Procedure = tf.Text("procedure", *in.Procedure)
		}
		if in.ConsultationType != nil {
			typ, ok := ParseConsultationType(*in.ConsultationType)
			if !ok {
				return DayEntry{}, invalid("consultation_type must be one of first_visit, follow_up, last_visit, other")
			}
			c.Type = typ
		}
		if in.Address != nil {
			c.Address = tf.Text("address", *in.Address)
		}
		if in.StartTime != nil {
			t, err := s.parseClock(e.Date, *in.StartTime)
			if err != nil {
				return DayEntry{}, invalid("start_time: " + err.Error())
			}
			c.StartTime = t
		}
		if in.EndTime != nil {
			t, err := s.parseClock(e.Date, *in.EndTime)
			if err != nil {
				return DayEntry{}, invalid("end_time: " + err.Error())
			}
			c.EndTime = t
		}
		if in.Description != nil {
			c.Description = tf.Text("description", *in.Description)
		}
		if err := tf.Err(); err != nil {
			return DayEntry{}, invalid(err.Error())
		}
		if err := validateConsultationEdit(c, in); err != nil {
			return DayEntry{}, err
		}
		e.Consultation = &c

	default:
		if in.hasConsultationFields() {
			return DayEntry{}, invalid("consultation fields cannot be set on a note")
		}
		n := Note{}
		if e.Note != nil {
			n = *e.Note
		}
		if in.Title != nil {
			n.Title = tf.Text("title", *in.Title)
		}
		if in.Description != nil {
			n.Description = tf.Text("description", *in.Description)
		}
		if in.Mood != nil {
			n.Mood = tf.Text("mood", *in.Mood)
		}
		if in.Phone != nil {
			n.Phone = tf.Text("phone", *in.Phone)
		}
		if in.Service != nil {
			n.Service = OfferedService(tf.Text("service", *in.Service))
		}
		if err := tf.Err(); err != nil {
			return DayEntry{}, invalid(err.Error())
		}
		if err := validateNoteEdit(n, in); err != nil {
			return DayEntry{}, err
		}
		e.Kind = KindNote
		e.Note = &n
	}

	e.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, e); err != nil {
		return DayEntry{}, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	if _, err := s.GetByID(ctx, ownerUserID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetByID trata los registros de otro owner como inexistentes.
func (s *Service) GetByID(ctx context.Context, ownerUserID, id string) (DayEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(ownerUserID) == "" {
		return DayEntry{}, ErrNotFound
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DayEntry{}, err
	}
	if e.OwnerUserID != ownerUserID {
		return DayEntry{}, ErrNotFound
	}
	return e, nil
}

// ListRange devuelve los registros con from <= date <= to.
func (s *Service) ListRange(ctx context.Context, ownerUserID, from, to string) ([]DayEntry, error) {
	if !dates.Valid(from) || !dates.Valid(to) {
		return nil, invalid(dates.ErrInvalidDate.Error())
	}
	if from > to {
		return nil, invalid("from must not be after to")
	}
	return s.repo.ListByDateRange(ctx, ownerUserID, from, to)
}

// ListDay devuelve los registros del día, el más reciente primero.
func (s *Service) ListDay(ctx context.Context, ownerUserID, date string) ([]DayEntry, error) {
	if !dates.Valid(date) {
		return nil, invalid(dates.ErrInvalidDate.Error())
	}
	return s.repo.ListByDate(ctx, ownerUserID, date)
}

func (s *Service) CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error) {
	return s.repo.CountByClientName(ctx, ownerUserID, clientName)
}

func (s *Service) LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error) {
	return s.repo.LastDateByClientName(ctx, ownerUserID, clientName)
}

// NextConsultation busca el primer atendimento del cliente desde hoy (inclusive).
func (s *Service) NextConsultation(ctx context.Context, ownerUserID, clientID string) (DayEntry, bool, error) {
	today := dates.FromTime(s.now(), s.loc)
	return s.repo.NextConsultation(ctx, ownerUserID, clientID, today)
}

func (s *Service) parseClock(date, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("is required")
	}
	if len(v) == len("15:04") {
		return dates.Combine(date, v, s.loc)
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.New("must be HH:MM or RFC3339")
	}
	if dates.FromTime(t, s.loc) != date {
		return time.Time{}, errors.New("must fall on the entry date")
	}
	return t, nil
}

func validateNote(n Note) error {
	if n.Title == "" {
		return invalid("title is required")
	}
	if n.Service != "" && !validService(n.Service) {
		return invalid("service is not offered")
	}
	return nil
}

// validateNoteEdit y validateConsultationEdit validan sólo los campos que
// la edición manda; un registro antiguo con campos vacíos se puede editar
// sin completarlos.
func validateNoteEdit(n Note, in UpdateInput) error {
	if in.Title != nil && n.Title == "" {
		return invalid("title is required")
	}
	if in.Service != nil && n.Service != "" && !validService(n.Service) {
		return invalid("service is not offered")
	}
	return nil
}

func validateConsultationEdit(c Consultation, in UpdateInput) error {
	if in.Procedure != nil && c.Procedure == "" {
		return invalid("procedure is required")
	}
	if in.Address != nil && c.Address == "" {
		return invalid("address is required")
	}
	if in.StartTime == nil && in.EndTime == nil {
		return nil
	}
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return invalid("start_time and end_time are required")
	}
	if !c.EndTime.After(c.StartTime) {
		return invalid("end_time must be after start_time")
	}
	return nil
}

func validateConsultation(c Consultation) error {
	if c.Procedure == "" {
		return invalid("procedure is required")
	}
	if c.Address == "" {
		return invalid("address is required")
	}
	if c.StartTime.IsZero() || c.EndTime.IsZero() {
		return invalid("start_time and end_time are required")
	}
	if !c.EndTime.After(c.StartTime) {
		return invalid("end_time must be after start_time")
	}
	return nil
}
