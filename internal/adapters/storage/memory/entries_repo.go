package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"practice-agenda/internal/domain/entries"
)

type entryRepo struct {
	mu   sync.RWMutex
	byID map[string]entries.DayEntry
}

func NewEntryRepo() entries.Repository {
	return &entryRepo{
		byID: make(map[string]entries.DayEntry),
	}
}

func (r *entryRepo) Create(ctx context.Context, e entries.DayEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("entry id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("entry already exists")
	}

	r.byID[e.ID] = e
	return nil
}

func (r *entryRepo) Update(ctx context.Context, e entries.DayEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return entries.ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *entryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return entries.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *entryRepo) GetByID(ctx context.Context, id string) (entries.DayEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return entries.DayEntry{}, entries.ErrNotFound
	}
	return e, nil
}

func (r *entryRepo) ListByDateRange(ctx context.Context, ownerUserID, from, to string) ([]entries.DayEntry, error) {
	out := r.filter(func(e entries.DayEntry) bool {
		// Las claves YYYY-MM-DD comparan bien como strings.
		return e.OwnerUserID == ownerUserID && e.Date >= from && e.Date <= to
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *entryRepo) ListByDate(ctx context.Context, ownerUserID, date string) ([]entries.DayEntry, error) {
	out := r.filter(func(e entries.DayEntry) bool {
		return e.OwnerUserID == ownerUserID && e.Date == date
	})

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *entryRepo) CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error) {
	return len(r.filter(byClientName(ownerUserID, clientName))), nil
}

func (r *entryRepo) LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error) {
	last := ""
	for _, e := range r.filter(byClientName(ownerUserID, clientName)) {
		if e.Date > last {
			last = e.Date
		}
	}
	return last, nil
}

func (r *entryRepo) NextConsultation(ctx context.Context, ownerUserID, clientID, fromDate string) (entries.DayEntry, bool, error) {
	found := r.filter(func(e entries.DayEntry) bool {
		return e.OwnerUserID == ownerUserID &&
			e.Consultation != nil &&
			e.Consultation.ClientID == clientID &&
			e.Date >= fromDate
	})
	if len(found) == 0 {
		return entries.DayEntry{}, false, nil
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].Date != found[j].Date {
			return found[i].Date < found[j].Date
		}
		return found[i].Consultation.StartTime.Before(found[j].Consultation.StartTime)
	})
	return found[0], true, nil
}

func (r *entryRepo) filter(keep func(entries.DayEntry) bool) []entries.DayEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entries.DayEntry, 0)
	for _, e := range r.byID {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func byClientName(ownerUserID, clientName string) func(entries.DayEntry) bool {
	name := strings.TrimSpace(clientName)
	return func(e entries.DayEntry) bool {
		if e.OwnerUserID != ownerUserID || name == "" {
			return false
		}
		return e.Consultation != nil && e.Consultation.ClientName == name
	}
}
