package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"practice-agenda/internal/domain/anamnesis"
)

type anamnesisRepo struct {
	mu   sync.RWMutex
	byID map[string]anamnesis.Anamnesis
}

func NewAnamnesisRepo() anamnesis.Repository {
	return &anamnesisRepo{
		byID: make(map[string]anamnesis.Anamnesis),
	}
}

func (r *anamnesisRepo) Create(ctx context.Context, a anamnesis.Anamnesis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("anamnesis id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("anamnesis already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *anamnesisRepo) GetByID(ctx context.Context, id string) (anamnesis.Anamnesis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return anamnesis.Anamnesis{}, anamnesis.ErrNotFound
	}
	return a, nil
}

func (r *anamnesisRepo) ListByClient(ctx context.Context, ownerUserID, clientID string) ([]anamnesis.Anamnesis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]anamnesis.Anamnesis, 0)
	for _, a := range r.byID {
		if a.OwnerUserID == ownerUserID && a.ClientID == clientID {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *anamnesisRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return anamnesis.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *anamnesisRepo) DeleteByClient(ctx context.Context, ownerUserID, clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.byID {
		if a.OwnerUserID == ownerUserID && a.ClientID == clientID {
			delete(r.byID, id)
		}
	}
	return nil
}
