package anamnesis

import "context"

type Repository interface {
	Create(ctx context.Context, a Anamnesis) error
	GetByID(ctx context.Context, id string) (Anamnesis, error)
	// ListByClient ordena por created_at desc.
	ListByClient(ctx context.Context, ownerUserID, clientID string) ([]Anamnesis, error)
	Delete(ctx context.Context, id string) error
	DeleteByClient(ctx context.Context, ownerUserID, clientID string) error
}
