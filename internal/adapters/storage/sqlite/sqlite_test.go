package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"practice-agenda/internal/domain/anamnesis"
	"practice-agenda/internal/domain/clients"
	"practice-agenda/internal/domain/entries"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "agenda.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func note(id, owner, date string, created time.Time) entries.DayEntry {
	return entries.DayEntry{
		ID:          id,
		OwnerUserID: owner,
		Date:        date,
		Kind:        entries.KindNote,
		Note:        &entries.Note{Title: "nota " + id},
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestEntriesRepo_RangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewEntriesRepo(openTestDB(t))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, d := range []string{"2024-02-29", "2024-03-01", "2024-03-31", "2024-04-01"} {
		if err := repo.Create(ctx, note(d, "u1", d, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create %s: %v", d, err)
		}
	}
	if err := repo.Create(ctx, note("other", "u2", "2024-03-10", base)); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	got, err := repo.ListByDateRange(ctx, "u1", "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("ListByDateRange: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2024-03-01" || got[1].Date != "2024-03-31" {
		t.Fatalf("expected Mar 1 and Mar 31 only, got %+v", got)
	}
}

func TestEntriesRepo_ConsultationRoundTripAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewEntriesRepo(openTestDB(t))

	start := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)
	c := entries.DayEntry{
		ID:          "c1",
		OwnerUserID: "u1",
		Date:        "2024-03-20",
		Kind:        entries.KindConsultation,
		Consultation: &entries.Consultation{
			ClientID:   "client-1",
			ClientName: "Ana",
			Procedure:  "Massagem",
			Type:       entries.ConsultationFollowUp,
			Address:    "Rua A, 1",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
		},
		CreatedAt: start,
		UpdatedAt: start,
	}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, note("n1", "u1", "2024-03-25", start)); err != nil {
		t.Fatalf("Create note: %v", err)
	}

	got, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Kind != entries.KindConsultation || got.Consultation == nil {
		t.Fatalf("expected consultation, got %+v", got)
	}
	if got.Consultation.ClientName != "Ana" || !got.Consultation.StartTime.Equal(start) {
		t.Fatalf("unexpected consultation: %+v", got.Consultation)
	}

	n, err := repo.CountByClientName(ctx, "u1", "Ana")
	if err != nil || n != 1 {
		t.Fatalf("expected count 1, got %d (%v)", n, err)
	}
	last, err := repo.LastDateByClientName(ctx, "u1", "Ana")
	if err != nil || last != "2024-03-20" {
		t.Fatalf("expected last 2024-03-20, got %q (%v)", last, err)
	}
	last, err = repo.LastDateByClientName(ctx, "u1", "Nobody")
	if err != nil || last != "" {
		t.Fatalf("expected empty last date, got %q (%v)", last, err)
	}

	next, ok, err := repo.NextConsultation(ctx, "u1", "client-1", "2024-03-20")
	if err != nil || !ok || next.ID != "c1" {
		t.Fatalf("expected next c1, got %+v ok=%v err=%v", next, ok, err)
	}
	if _, ok, _ := repo.NextConsultation(ctx, "u1", "client-1", "2024-03-21"); ok {
		t.Fatalf("expected no consultation after the 20th")
	}
}

func TestEntriesRepo_NextConsultation_UntimedRowsLast(t *testing.T) {
	ctx := context.Background()
	repo := NewEntriesRepo(openTestDB(t))
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	consultation := func(id string, c entries.Consultation) entries.DayEntry {
		c.ClientID, c.ClientName, c.Procedure = "client-1", "Ana", "Massagem"
		return entries.DayEntry{
			ID:           id,
			OwnerUserID:  "u1",
			Date:         "2024-03-20",
			Kind:         entries.KindConsultation,
			Consultation: &c,
			CreatedAt:    created,
			UpdatedAt:    created,
		}
	}
	start := time.Date(2024, 3, 20, 16, 0, 0, 0, time.UTC)
	untimed := consultation("legacy", entries.Consultation{})
	timed := consultation("timed", entries.Consultation{StartTime: start, EndTime: start.Add(time.Hour)})
	for _, e := range []entries.DayEntry{untimed, timed} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create %s: %v", e.ID, err)
		}
	}

	next, ok, err := repo.NextConsultation(ctx, "u1", "client-1", "2024-03-20")
	if err != nil || !ok {
		t.Fatalf("NextConsultation: ok=%v err=%v", ok, err)
	}
	if next.ID != "timed" {
		t.Fatalf("expected the timed consultation first, got %s", next.ID)
	}
}

func TestEntriesRepo_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewEntriesRepo(openTestDB(t))
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	e := note("n1", "u1", "2024-03-01", created)
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.Note.Title = "editada"
	e.UpdatedAt = created.Add(time.Hour)
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := repo.GetByID(ctx, "n1")
	if got.Note == nil || got.Note.Title != "editada" || !got.UpdatedAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Update(ctx, note("missing", "u1", "2024-03-01", created)); !errors.Is(err, entries.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, entries.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
	if err := repo.Delete(ctx, "n1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, "n1"); !errors.Is(err, entries.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestClientsRepo_SearchIsCaseInsensitiveAndSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewClientsRepo(openTestDB(t))
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"bruna", "Ana", "Carla Ana"} {
		c := clients.Client{ID: string(rune('a' + i)), OwnerUserID: "u1", Name: name, CreatedAt: now, UpdatedAt: now}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.ListByOwner(ctx, "u1", "")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Ana" || all[1].Name != "bruna" {
		t.Fatalf("unexpected order: %+v", all)
	}

	found, _ := repo.ListByOwner(ctx, "u1", "ANA")
	if len(found) != 2 {
		t.Fatalf("expected 2 matches for ANA, got %d", len(found))
	}
	if none, _ := repo.ListByOwner(ctx, "u2", ""); len(none) != 0 {
		t.Fatalf("expected no clients for other owner")
	}
}

func TestAnamnesisRepo_NewestFirstAndDeleteByClient(t *testing.T) {
	ctx := context.Background()
	repo := NewAnamnesisRepo(openTestDB(t))
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2"} {
		a := anamnesis.Anamnesis{
			ID: id, OwnerUserID: "u1", ClientID: "c1", Title: "Ficha " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := repo.ListByClient(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("ListByClient: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a2" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	if err := repo.DeleteByClient(ctx, "u1", "c1"); err != nil {
		t.Fatalf("DeleteByClient: %v", err)
	}
	if list, _ := repo.ListByClient(ctx, "u1", "c1"); len(list) != 0 {
		t.Fatalf("expected no anamnesis after DeleteByClient")
	}
}
