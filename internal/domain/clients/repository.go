package clients

import "context"

type Repository interface {
	Create(ctx context.Context, c Client) error
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Client, error)
	// ListByOwner ordena por nombre asc. query filtra por substring del
	// nombre sin distinguir mayúsculas; vacío = todos.
	ListByOwner(ctx context.Context, ownerUserID, query string) ([]Client, error)
}
