package entries

import (
	"strings"
	"time"
)

// Kind discrimina explícitamente las dos formas de DayEntry.
// @Enum note, consultation
type Kind string

const (
	KindNote         Kind = "note"
	KindConsultation Kind = "consultation"
)

// ConsultationType define los tipos de atendimento.
// @Enum first_visit, follow_up, last_visit, other
type ConsultationType string

const (
	ConsultationFirstVisit ConsultationType = "first_visit"
	ConsultationFollowUp   ConsultationType = "follow_up"
	ConsultationLastVisit  ConsultationType = "last_visit"
	ConsultationOther      ConsultationType = "other"
)

var consultationLabels = map[ConsultationType]string{
	ConsultationFirstVisit: "Primeira Consulta",
	ConsultationFollowUp:   "Retorno",
	ConsultationLastVisit:  "Última Consulta",
	ConsultationOther:      "Outro",
}

// Label devuelve el nombre que ve la operadora.
func (t ConsultationType) Label() string {
	if l, ok := consultationLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseConsultationType acepta el código o la etiqueta.
func ParseConsultationType(s string) (ConsultationType, bool) {
	s = strings.TrimSpace(s)
	if _, ok := consultationLabels[ConsultationType(s)]; ok {
		return ConsultationType(s), true
	}
	for t, l := range consultationLabels {
		if strings.EqualFold(l, s) {
			return t, true
		}
	}
	return "", false
}

// OfferedService es uno de los servicios que ofrece el consultorio.
type OfferedService string

const (
	ServiceLymphaticDrainage OfferedService = "Drenagem linfática"
	ServiceHotStones         OfferedService = "Pedras quentes"
	ServiceTherapeuticCandle OfferedService = "Velas terapêuticas"
	ServiceRelaxing          OfferedService = "Relaxante"
	ServiceCupping           OfferedService = "Ventosa"
	ServiceMassage           OfferedService = "Massagem"
)

// OfferedServices en el orden en que se muestran.
var OfferedServices = []OfferedService{
	ServiceLymphaticDrainage,
	ServiceHotStones,
	ServiceTherapeuticCandle,
	ServiceRelaxing,
	ServiceCupping,
	ServiceMassage,
}

func validService(s OfferedService) bool {
	for _, v := range OfferedServices {
		if v == s {
			return true
		}
	}
	return false
}

// Note es la forma libre de un DayEntry.
// Phone y Service vienen de la forma legada (name/phone/notas/service).
type Note struct {
	Title       string
	Description string
	Mood        string
	Phone       string
	Service     OfferedService
}

// Consultation es la forma estructurada: un atendimento de un cliente.
type Consultation struct {
	ClientID   string
	ClientName string // copia del nombre al momento de agendar

	Procedure string
	Type      ConsultationType
	Address   string

	StartTime time.Time
	EndTime   time.Time

	Description string
}

// Title replica el título que se mostraba en el calendario.
func (c Consultation) Title() string {
	return strings.TrimSpace(c.Procedure + " - " + c.ClientName)
}

// DayEntry es un registro atado a un día del calendario.
// Exactamente uno de Note / Consultation está presente, según Kind.
type DayEntry struct {
	ID          string
	OwnerUserID string

	Date string // YYYY-MM-DD
	Kind Kind

	Note         *Note
	Consultation *Consultation

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields es la forma plana de un DayEntry tal como vive en una tabla.
// Los adapters de storage leen y escriben esto.
type Fields struct {
	ID          string
	OwnerUserID string
	Date        string
	Kind        string

	Title       string
	Description string
	Mood        string
	Phone       string
	Service     string

	ClientID         string
	ClientName       string
	Procedure        string
	ConsultationType string
	Address          string
	StartTime        *time.Time
	EndTime          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolveKind decide la forma de una fila. Si la fila trae kind explícito
// se respeta; las filas legadas sin kind se clasifican por client_id.
func ResolveKind(kind, clientID string) Kind {
	switch Kind(strings.TrimSpace(kind)) {
	case KindNote:
		return KindNote
	case KindConsultation:
		return KindConsultation
	}
	if strings.TrimSpace(clientID) != "" {
		return KindConsultation
	}
	return KindNote
}

// FromFields reconstruye el DayEntry tipado desde una fila.
func FromFields(f Fields) DayEntry {
	e := DayEntry{
		ID:          f.ID,
		OwnerUserID: f.OwnerUserID,
		Date:        f.Date,
		Kind:        ResolveKind(f.Kind, f.ClientID),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}

	if e.Kind == KindConsultation {
		c := &Consultation{
			ClientID:    f.ClientID,
			ClientName:  f.ClientName,
			Procedure:   f.Procedure,
			Type:        ConsultationType(f.ConsultationType),
			Address:     f.Address,
			Description: f.Description,
		}
		if f.StartTime != nil {
			c.StartTime = *f.StartTime
		}
		if f.EndTime != nil {
			c.EndTime = *f.EndTime
		}
		e.Consultation = c
		return e
	}

	e.Note = &Note{
		Title:       f.Title,
		Description: f.Description,
		Mood:        f.Mood,
		Phone:       f.Phone,
		Service:     OfferedService(f.Service),
	}
	return e
}

// Fields aplana el DayEntry para persistirlo.
func (e DayEntry) Fields() Fields {
	f := Fields{
		ID:          e.ID,
		OwnerUserID: e.OwnerUserID,
		Date:        e.Date,
		Kind:        string(e.Kind),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}

	switch {
	case e.Consultation != nil:
		c := e.Consultation
		f.Title = c.Title()
		f.Description = c.Description
		f.ClientID = c.ClientID
		f.ClientName = c.ClientName
		f.Procedure = c.Procedure
		f.ConsultationType = string(c.Type)
		f.Address = c.Address
		if !c.StartTime.IsZero() {
			st := c.StartTime
			f.StartTime = &st
		}
		if !c.EndTime.IsZero() {
			et := c.EndTime
			f.EndTime = &et
		}
	case e.Note != nil:
		n := e.Note
		f.Title = n.Title
		f.Description = n.Description
		f.Mood = n.Mood
		f.Phone = n.Phone
		f.Service = string(n.Service)
	}
	return f
}
