package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"practice-agenda/internal/domain/clients"
)

type clientRepo struct {
	mu   sync.RWMutex
	byID map[string]clients.Client
}

func NewClientRepo() clients.Repository {
	return &clientRepo{
		byID: make(map[string]clients.Client),
	}
}

func (r *clientRepo) Create(ctx context.Context, c clients.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == "" {
		return errors.New("client id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("client already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *clientRepo) Update(ctx context.Context, c clients.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return clients.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return clients.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (clients.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return clients.Client{}, clients.ErrNotFound
	}
	return c, nil
}

func (r *clientRepo) ListByOwner(ctx context.Context, ownerUserID, query string) ([]clients.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]clients.Client, 0)
	for _, c := range r.byID {
		if c.OwnerUserID != ownerUserID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
