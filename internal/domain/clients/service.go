package clients

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"practice-agenda/internal/platform/dates"
	"practice-agenda/internal/platform/textclean"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("client not found")
)

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name      string
	Phone     string
	Email     string
	BirthDate string // YYYY-MM-DD opcional
	Address   string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Client, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Client{}, ErrInvalidInput
	}

	var tf textclean.Fields
	c := Client{
		Name:    tf.Text("name", in.Name),
		Phone:   tf.Text("phone", in.Phone),
		Email:   strings.TrimSpace(in.Email),
		Address: tf.Text("address", in.Address),
	}
	if err := tf.Err(); err != nil {
		return Client{}, invalid(err.Error())
	}
	if strings.TrimSpace(in.BirthDate) != "" {
		bd, err := dates.Parse(in.BirthDate)
		if err != nil {
			return Client{}, invalid("birth_date must be YYYY-MM-DD")
		}
		c.BirthDate = &bd
	}
	if err := validate(c); err != nil {
		return Client{}, err
	}

	now := s.now()
	c.ID = uuid.NewString()
	c.OwnerUserID = ownerUserID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

// PatchBirthDate distingue "no enviado" de "null" (limpiar).
type PatchBirthDate struct {
	Present bool
	Value   *string
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name      *string
	Phone     *string
	Email     *string
	BirthDate PatchBirthDate
	Address   *string
}

func (s *Service) Update(ctx context.Context, ownerUserID, id string, in UpdateInput) (Client, error) {
	c, err := s.GetByID(ctx, ownerUserID, id)
	if err != nil {
		return Client{}, err
	}

	var tf textclean.Fields
	if in.Name != nil {
		c.Name = tf.Text("name", *in.Name)
	}
	if in.Phone != nil {
		c.Phone = tf.Text("phone", *in.Phone)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		c.Address = tf.Text("address", *in.Address)
	}
	if err := tf.Err(); err != nil {
		return Client{}, invalid(err.Error())
	}
	if in.BirthDate.Present {
		if in.BirthDate.Value == nil || strings.TrimSpace(*in.BirthDate.Value) == "" {
			c.BirthDate = nil
		} else {
			bd, err := dates.Parse(*in.BirthDate.Value)
			if err != nil {
				return Client{}, invalid("birth_date must be YYYY-MM-DD")
			}
			c.BirthDate = &bd
		}
	}
	if err := validate(c); err != nil {
		return Client{}, err
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	if _, err := s.GetByID(ctx, ownerUserID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetByID trata los clientes de otro owner como inexistentes.
func (s *Service) GetByID(ctx context.Context, ownerUserID, id string) (Client, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(ownerUserID) == "" {
		return Client{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if c.OwnerUserID != ownerUserID {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, ownerUserID, query string) ([]Client, error) {
	return s.repo.ListByOwner(ctx, ownerUserID, strings.TrimSpace(query))
}

// ClientName implementa entries.ClientDirectory.
func (s *Service) ClientName(ctx context.Context, ownerUserID, clientID string) (string, error) {
	c, err := s.GetByID(ctx, ownerUserID, clientID)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func validate(c Client) error {
	if c.Name == "" {
		return invalid("name is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return invalid("email is not valid")
		}
	}
	if c.BirthDate != nil && c.BirthDate.After(time.Now()) {
		return invalid("birth_date cannot be in the future")
	}
	return nil
}
