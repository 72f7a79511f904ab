package daydetail

import (
	"time"

	"practice-agenda/internal/domain/entries"
)

// Item es una fila del detalle del día, ya clasificada.
type Item struct {
	ID   string       `json:"id"`
	Kind entries.Kind `json:"kind"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// nota
	Mood    string `json:"mood,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service,omitempty"`

	// atendimento
	ClientID   string `json:"client_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Procedure  string `json:"procedure,omitempty"`
	TypeLabel  string `json:"consultation_type,omitempty"`
	TimeRange  string `json:"time_range,omitempty"` // "09:00 - 10:00"
	Address    string `json:"address,omitempty"`

	Editing         bool `json:"editing"`
	PendingDeletion bool `json:"pending_deletion"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Items clasifica los registros cargados en el orden en que se muestran.
func (m *Model) Items() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc := m.store.Location()
	if loc == nil {
		loc = time.UTC
	}

	out := make([]Item, 0, len(m.entries))
	for _, e := range m.entries {
		it := classify(e, loc)
		it.Editing = e.ID == m.editingID
		it.PendingDeletion = e.ID == m.pendingDelete
		out = append(out, it)
	}
	return out
}

func classify(e entries.DayEntry, loc *time.Location) Item {
	it := Item{
		ID:        e.ID,
		Kind:      e.Kind,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}

	if e.Kind == entries.KindConsultation && e.Consultation != nil {
		c := e.Consultation
		it.Title = c.Title()
		it.Description = c.Description
		it.ClientID = c.ClientID
		it.ClientName = c.ClientName
		it.Procedure = c.Procedure
		it.TypeLabel = c.Type.Label()
		it.Address = c.Address
		if !c.StartTime.IsZero() && !c.EndTime.IsZero() {
			it.TimeRange = c.StartTime.In(loc).Format("15:04") + " - " + c.EndTime.In(loc).Format("15:04")
		}
		return it
	}

	it.Kind = entries.KindNote
	if n := e.Note; n != nil {
		it.Title = n.Title
		it.Description = n.Description
		it.Mood = n.Mood
		it.Phone = n.Phone
		it.Service = string(n.Service)
	}
	return it
}
