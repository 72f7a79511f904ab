// Package daydetail es el view-model de un día: sus registros, la edición
// de a uno por vez y el borrado en dos pasos.
package daydetail

import (
	"context"
	"errors"
	"sync"
	"time"

	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/platform/dates"
)

var (
	// ErrEditInProgress: ya hay otro registro en edición. Hay que guardar o
	// cancelar antes de editar otro.
	ErrEditInProgress  = errors.New("another entry is being edited")
	ErrNotEditing      = errors.New("entry is not being edited")
	ErrEntryNotLoaded  = errors.New("entry is not part of this day")
	ErrNoPendingDelete = errors.New("no entry pending deletion")
)

// Store son las operaciones de registros que usa el detalle del día.
// Lo implementa entries.Service.
type Store interface {
	ListDay(ctx context.Context, ownerUserID, date string) ([]entries.DayEntry, error)
	Update(ctx context.Context, ownerUserID, id string, in entries.UpdateInput) (entries.DayEntry, error)
	Delete(ctx context.Context, ownerUserID, id string) error
	Location() *time.Location
}

// Form es el borrador de edición. Los horarios van como HH:MM.
type Form struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Mood        string `json:"mood,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Service     string `json:"service,omitempty"`

	Procedure        string `json:"procedure,omitempty"`
	ConsultationType string `json:"consultation_type,omitempty"`
	Address          string `json:"address,omitempty"`
	StartTime        string `json:"start_time,omitempty"`
	EndTime          string `json:"end_time,omitempty"`
}

type Model struct {
	store Store
	owner string

	mu            sync.Mutex
	date          string
	entries       []entries.DayEntry
	gen           uint64
	editingID     string
	original      Form
	scratch       Form
	pendingDelete string
}

func New(store Store, ownerUserID string) *Model {
	return &Model{store: store, owner: ownerUserID}
}

// Load trae los registros del día (más nuevo primero). Un día sin
// registros no es error. Una respuesta de un día que ya no está
// seleccionado se descarta.
func (m *Model) Load(ctx context.Context, date string) error {
	if !dates.Valid(date) {
		return dates.ErrInvalidDate
	}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	if m.date != date {
		m.clearEditLocked()
		m.pendingDelete = ""
	}
	m.date = date
	m.mu.Unlock()

	items, err := m.store.ListDay(ctx, m.owner, date)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	if err != nil {
		return err
	}
	m.entries = items
	return nil
}

func (m *Model) reload(ctx context.Context) error {
	m.mu.Lock()
	date := m.date
	m.mu.Unlock()
	return m.Load(ctx, date)
}

func (m *Model) Date() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.date
}

func (m *Model) Entries() []entries.DayEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entries.DayEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Empty es el estado "todavía no hay registros".
func (m *Model) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries) == 0
}

// BeginEdit copia los campos editables al borrador. Si otro registro está
// en edición devuelve ErrEditInProgress; volver a empezar el mismo no
// cambia nada.
func (m *Model) BeginEdit(id string) (Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.editingID != "" {
		if m.editingID == id {
			return m.scratch, nil
		}
		return Form{}, ErrEditInProgress
	}

	e, ok := m.findLocked(id)
	if !ok {
		return Form{}, ErrEntryNotLoaded
	}

	m.editingID = id
	m.original = formFrom(e, m.store.Location())
	m.scratch = m.original
	return m.scratch, nil
}

// Editing devuelve el id en edición ("" si ninguno) y el borrador.
func (m *Model) Editing() (string, Form) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editingID, m.scratch
}

// SaveEdit guarda el borrador. Sólo se mandan los campos que cambiaron
// desde BeginEdit. Si sale bien sale de edición y recarga el día; si falla
// sigue en edición con los valores enviados.
func (m *Model) SaveEdit(ctx context.Context, id string, f Form) error {
	m.mu.Lock()
	if m.editingID != id || id == "" {
		m.mu.Unlock()
		return ErrNotEditing
	}
	e, ok := m.findLocked(id)
	original := m.original
	m.scratch = f
	m.mu.Unlock()
	if !ok {
		return ErrEntryNotLoaded
	}

	if _, err := m.store.Update(ctx, m.owner, id, updateFrom(e.Kind, original, f)); err != nil {
		return err
	}

	m.mu.Lock()
	if m.editingID == id {
		m.clearEditLocked()
	}
	m.mu.Unlock()

	return m.reload(ctx)
}

func (m *Model) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearEditLocked()
}

func (m *Model) clearEditLocked() {
	m.editingID, m.original, m.scratch = "", Form{}, Form{}
}

// RequestDelete marca el registro para borrar; no borra nada todavía.
func (m *Model) RequestDelete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.findLocked(id); !ok {
		return ErrEntryNotLoaded
	}
	m.pendingDelete = id
	return nil
}

func (m *Model) PendingDelete() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingDelete
}

// ConfirmDelete borra el registro marcado y recarga el día.
func (m *Model) ConfirmDelete(ctx context.Context) error {
	m.mu.Lock()
	id := m.pendingDelete
	m.mu.Unlock()
	if id == "" {
		return ErrNoPendingDelete
	}

	if err := m.store.Delete(ctx, m.owner, id); err != nil {
		return err
	}

	m.mu.Lock()
	m.pendingDelete = ""
	if m.editingID == id {
		m.clearEditLocked()
	}
	m.mu.Unlock()

	return m.reload(ctx)
}

func (m *Model) CancelDelete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingDelete = ""
}

func (m *Model) findLocked(id string) (entries.DayEntry, bool) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, true
		}
	}
	return entries.DayEntry{}, false
}

func formFrom(e entries.DayEntry, loc *time.Location) Form {
	if loc == nil {
		loc = time.UTC
	}
	switch {
	case e.Consultation != nil:
		c := e.Consultation
		f := Form{
			Description:      c.Description,
			Procedure:        c.Procedure,
			ConsultationType: string(c.Type),
			Address:          c.Address,
		}
		if !c.StartTime.IsZero() {
			f.StartTime = c.StartTime.In(loc).Format("15:04")
		}
		if !c.EndTime.IsZero() {
			f.EndTime = c.EndTime.In(loc).Format("15:04")
		}
		return f
	case e.Note != nil:
		n := e.Note
		return Form{
			Title:       n.Title,
			Description: n.Description,
			Mood:        n.Mood,
			Phone:       n.Phone,
			Service:     string(n.Service),
		}
	}
	return Form{}
}

func updateFrom(kind entries.Kind, before, after Form) entries.UpdateInput {
	in := entries.UpdateInput{Description: changed(before.Description, after.Description)}
	if kind == entries.KindConsultation {
		in.Procedure = changed(before.Procedure, after.Procedure)
		in.ConsultationType = changed(before.ConsultationType, after.ConsultationType)
		in.Address = changed(before.Address, after.Address)
		in.StartTime = changed(before.StartTime, after.StartTime)
		in.EndTime = changed(before.EndTime, after.EndTime)
		return in
	}
	in.Title = changed(before.Title, after.Title)
	in.Mood = changed(before.Mood, after.Mood)
	in.Phone = changed(before.Phone, after.Phone)
	in.Service = changed(before.Service, after.Service)
	return in
}

// changed devuelve nil si el campo no se tocó.
func changed(before, after string) *string {
	if before == after {
		return nil
	}
	return &after
}
