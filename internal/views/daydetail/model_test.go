package daydetail

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"practice-agenda/internal/domain/entries"
)

type fakeStore struct {
	byID      map[string]entries.DayEntry
	updateErr error
	updates   []entries.UpdateInput
}

func newFakeStore(items ...entries.DayEntry) *fakeStore {
	s := &fakeStore{byID: map[string]entries.DayEntry{}}
	for _, e := range items {
		s.byID[e.ID] = e
	}
	return s
}

func (s *fakeStore) ListDay(ctx context.Context, owner, date string) ([]entries.DayEntry, error) {
	out := make([]entries.DayEntry, 0)
	for _, e := range s.byID {
		if e.Date == date {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) Update(ctx context.Context, owner, id string, in entries.UpdateInput) (entries.DayEntry, error) {
	s.updates = append(s.updates, in)
	if s.updateErr != nil {
		return entries.DayEntry{}, s.updateErr
	}
	e := s.byID[id]
	if e.Note != nil && in.Title != nil {
		n := *e.Note
		n.Title = *in.Title
		e.Note = &n
	}
	s.byID[id] = e
	return e, nil
}

func (s *fakeStore) Delete(ctx context.Context, owner, id string) error {
	if _, ok := s.byID[id]; !ok {
		return entries.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *fakeStore) Location() *time.Location { return time.UTC }

var base = time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)

func note(id, date string, minutes int) entries.DayEntry {
	return entries.DayEntry{
		ID: id, Date: date, Kind: entries.KindNote,
		Note:      &entries.Note{Title: "nota " + id},
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestModel_Load_EmptyDayIsNotAnError(t *testing.T) {
	m := New(newFakeStore(), "op-1")
	if err := m.Load(context.Background(), "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !m.Empty() || len(m.Items()) != 0 {
		t.Fatalf("expected empty state")
	}
}

func TestModel_Load_NewestFirst(t *testing.T) {
	m := New(newFakeStore(note("old", "2024-03-09", 0), note("new", "2024-03-09", 30)), "op-1")
	if err := m.Load(context.Background(), "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	items := m.Items()
	if len(items) != 2 || items[0].ID != "new" {
		t.Fatalf("expected newest first, got %#v", items)
	}
}

func TestModel_Load_RejectsBadDate(t *testing.T) {
	m := New(newFakeStore(), "op-1")
	if err := m.Load(context.Background(), "09/03/2024"); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestModel_BeginEdit_BlocksSecondEntry(t *testing.T) {
	m := New(newFakeStore(note("a", "2024-03-09", 0), note("b", "2024-03-09", 1)), "op-1")
	if err := m.Load(context.Background(), "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	form, err := m.BeginEdit("a")
	if err != nil {
		t.Fatalf("BeginEdit error: %v", err)
	}
	if form.Title != "nota a" {
		t.Fatalf("expected scratch copied from entry, got %#v", form)
	}

	if _, err := m.BeginEdit("b"); !errors.Is(err, ErrEditInProgress) {
		t.Fatalf("expected ErrEditInProgress, got %v", err)
	}
	if _, err := m.BeginEdit("a"); err != nil {
		t.Fatalf("re-beginning the same entry should be a no-op, got %v", err)
	}

	m.CancelEdit()
	if id, _ := m.Editing(); id != "" {
		t.Fatalf("expected no entry in edit after cancel")
	}
	if _, err := m.BeginEdit("b"); err != nil {
		t.Fatalf("BeginEdit after cancel: %v", err)
	}
}

func TestModel_SaveEdit_FailureKeepsEditMode(t *testing.T) {
	store := newFakeStore(note("a", "2024-03-09", 0))
	store.updateErr = errors.New("store down")
	m := New(store, "op-1")
	ctx := context.Background()
	if err := m.Load(ctx, "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	form, _ := m.BeginEdit("a")
	form.Title = "editado"
	if err := m.SaveEdit(ctx, "a", form); err == nil {
		t.Fatalf("expected save error")
	}

	id, scratch := m.Editing()
	if id != "a" || scratch.Title != "editado" {
		t.Fatalf("expected edit mode kept with values, got %q %#v", id, scratch)
	}
}

func TestModel_SaveEdit_SuccessExitsAndReloads(t *testing.T) {
	store := newFakeStore(note("a", "2024-03-09", 0))
	m := New(store, "op-1")
	ctx := context.Background()
	if err := m.Load(ctx, "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if err := m.SaveEdit(ctx, "a", Form{Title: "x"}); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing without BeginEdit, got %v", err)
	}

	form, _ := m.BeginEdit("a")
	form.Title = "editado"
	if err := m.SaveEdit(ctx, "a", form); err != nil {
		t.Fatalf("SaveEdit error: %v", err)
	}
	if id, _ := m.Editing(); id != "" {
		t.Fatalf("expected edit mode exited")
	}
	if got := m.Items()[0].Title; got != "editado" {
		t.Fatalf("expected reloaded title, got %q", got)
	}
	if in := store.updates[0]; in.Procedure != nil {
		t.Fatalf("note edit should not send consultation fields")
	}
}

func TestModel_SaveEdit_SendsOnlyChangedFields(t *testing.T) {
	legacy := entries.FromFields(entries.Fields{
		ID: "old", Date: "2024-03-09", ClientID: "c1", ClientName: "Ana",
		Procedure: "Massagem", Description: "antes",
	})
	store := newFakeStore(legacy)
	m := New(store, "op-1")
	ctx := context.Background()
	if err := m.Load(ctx, "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	form, err := m.BeginEdit("old")
	if err != nil {
		t.Fatalf("BeginEdit error: %v", err)
	}
	if form.ConsultationType != "" || form.StartTime != "" {
		t.Fatalf("expected empty legacy fields, got %#v", form)
	}
	form.Description = "depois"
	if err := m.SaveEdit(ctx, "old", form); err != nil {
		t.Fatalf("SaveEdit error: %v", err)
	}

	in := store.updates[0]
	if in.Description == nil || *in.Description != "depois" {
		t.Fatalf("expected description sent, got %#v", in.Description)
	}
	if in.Procedure != nil || in.ConsultationType != nil || in.Address != nil || in.StartTime != nil || in.EndTime != nil {
		t.Fatalf("untouched consultation fields were sent: %#v", in)
	}
}

func TestModel_Delete_TwoStep(t *testing.T) {
	store := newFakeStore(note("a", "2024-03-09", 0), note("other", "2024-03-10", 0))
	m := New(store, "op-1")
	ctx := context.Background()
	if err := m.Load(ctx, "2024-03-09"); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if err := m.ConfirmDelete(ctx); !errors.Is(err, ErrNoPendingDelete) {
		t.Fatalf("expected ErrNoPendingDelete, got %v", err)
	}

	if err := m.RequestDelete("a"); err != nil {
		t.Fatalf("RequestDelete error: %v", err)
	}
	m.CancelDelete()
	if m.PendingDelete() != "" || len(store.byID) != 2 {
		t.Fatalf("cancel should not delete")
	}

	if err := m.RequestDelete("other"); !errors.Is(err, ErrEntryNotLoaded) {
		t.Fatalf("expected ErrEntryNotLoaded for entry of another day, got %v", err)
	}

	if err := m.RequestDelete("a"); err != nil {
		t.Fatalf("RequestDelete error: %v", err)
	}
	if err := m.ConfirmDelete(ctx); err != nil {
		t.Fatalf("ConfirmDelete error: %v", err)
	}
	if !m.Empty() {
		t.Fatalf("expected day empty after delete")
	}
	if _, ok := store.byID["other"]; !ok {
		t.Fatalf("delete affected another date")
	}
}

func TestItems_ClassificationFollowsClientID(t *testing.T) {
	start := time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	row := entries.Fields{
		ID: "x", Date: "2024-03-09", Title: "Massagem - Ana", Procedure: "Massagem",
		ClientName: "Ana", ConsultationType: "follow_up", StartTime: &start, EndTime: &end,
	}
	asNote := entries.FromFields(row)
	row.ClientID = "c1"
	asConsultation := entries.FromFields(row)

	n := classify(asNote, time.UTC)
	c := classify(asConsultation, time.UTC)

	if n.Kind != entries.KindNote || n.ClientName != "" {
		t.Fatalf("expected note without client_id, got %#v", n)
	}
	if c.Kind != entries.KindConsultation || c.ClientName != "Ana" || c.TypeLabel != "Retorno" {
		t.Fatalf("expected consultation with client_id, got %#v", c)
	}
	if c.TimeRange != "09:00 - 10:00" {
		t.Fatalf("unexpected time range %q", c.TimeRange)
	}
}
