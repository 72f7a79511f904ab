package clients

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Client
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Client{}}
}

func (r *testRepo) Create(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Update(ctx context.Context, c Client) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID, query string) ([]Client, error) {
	out := make([]Client, 0)
	for _, c := range r.byID {
		if c.OwnerUserID != ownerUserID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func strPtr(s string) *string { return &s }

// -------------------------
// Tests
// -------------------------

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Name: "  "}},
		{"bad email", CreateInput{Name: "Ana", Email: "not-an-email"}},
		{"bad birth date", CreateInput{Name: "Ana", BirthDate: "02/05/1990"}},
		{"future birth date", CreateInput{Name: "Ana", BirthDate: time.Now().AddDate(1, 0, 0).Format("2006-01-02")}},
		{"markup in name", CreateInput{Name: "Ana <i>Souza</i>"}},
		{"tag-like address", CreateInput{Name: "Ana", Address: "Rua a<b, 10"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, "op-1", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_SetsFields(t *testing.T) {
	svc := NewService(newTestRepo())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	c, err := svc.Create(context.Background(), "op-1", CreateInput{
		Name:      " Ana Souza ",
		Email:     "ana@example.com",
		BirthDate: "1990-05-02",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.ID == "" || c.OwnerUserID != "op-1" {
		t.Fatalf("expected id and owner set, got %#v", c)
	}
	if c.Name != "Ana Souza" {
		t.Fatalf("expected trimmed name, got %q", c.Name)
	}
	if c.BirthDate == nil || c.BirthDate.Format("2006-01-02") != "1990-05-02" {
		t.Fatalf("unexpected birth date %v", c.BirthDate)
	}
	if c.CreatedAt != now || c.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Update_PatchSemantics(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "op-1", CreateInput{Name: "Ana", Phone: "111", BirthDate: "1990-05-02"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	later := c.UpdatedAt.Add(time.Hour)
	svc.now = func() time.Time { return later }

	// solo phone; birth_date no enviado
	u, err := svc.Update(ctx, "op-1", c.ID, UpdateInput{Phone: strPtr("222")})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if u.Name != "Ana" || u.Phone != "222" || u.BirthDate == nil {
		t.Fatalf("unexpected patch result %#v", u)
	}
	if !u.UpdatedAt.Equal(later) {
		t.Fatalf("expected UpdatedAt refreshed")
	}

	// birth_date: null limpia
	u, err = svc.Update(ctx, "op-1", c.ID, UpdateInput{BirthDate: PatchBirthDate{Present: true}})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if u.BirthDate != nil {
		t.Fatalf("expected birth date cleared")
	}

	if _, err := svc.Update(ctx, "op-1", c.ID, UpdateInput{Name: strPtr("")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput clearing name, got %v", err)
	}
}

func TestService_ForeignOwnerIsNotFound(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	c, err := svc.Create(ctx, "op-1", CreateInput{Name: "Ana"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.GetByID(ctx, "op-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ClientName(ctx, "op-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from ClientName, got %v", err)
	}
	if err := svc.Delete(ctx, "op-2", c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign client, got %v", err)
	}

	owner, err := svc.OwnerOf(ctx, c.ID)
	if err != nil || owner != "op-1" {
		t.Fatalf("OwnerOf = %q, %v", owner, err)
	}
}
