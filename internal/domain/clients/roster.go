package clients

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"practice-agenda/internal/domain/anamnesis"
	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/export/pdf"
	"practice-agenda/internal/platform/dates"
	"practice-agenda/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

const DefaultRosterConcurrency = 4

// EntryStats son las consultas de agenda que alimentan la lista de clientes.
// Lo implementa entries.Service.
type EntryStats interface {
	CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error)
	LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error)
	NextConsultation(ctx context.Context, ownerUserID, clientID string) (entries.DayEntry, bool, error)
}

// AnamnesisStore lo implementa anamnesis.Service.
type AnamnesisStore interface {
	ListByClient(ctx context.Context, ownerUserID, clientID string) ([]anamnesis.Anamnesis, error)
	DeleteByClient(ctx context.Context, ownerUserID, clientID string) error
}

// Row es un cliente con sus estadísticas derivadas.
type Row struct {
	Client

	TotalEntries         int
	LastEntryDate        string // YYYY-MM-DD o vacío
	NextConsultationDate string // YYYY-MM-DD o vacío
	NextConsultationTime string // HH:MM en la zona del consultorio o vacío
}

type RosterOptions struct {
	Concurrency int
	Location    *time.Location
	Logger      logger.Logger
	PDF         *pdf.Renderer
}

// Roster arma la lista de clientes con sus estadísticas. Cada cliente
// dispara tres consultas independientes; corren en paralelo con un límite.
type Roster struct {
	clients   *Service
	entries   EntryStats
	anamnesis AnamnesisStore

	limit int
	loc   *time.Location
	log   logger.Logger
	pdf   *pdf.Renderer
	now   func() time.Time
}

func NewRoster(clients *Service, stats EntryStats, an AnamnesisStore, opts RosterOptions) *Roster {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultRosterConcurrency
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.PDF == nil {
		opts.PDF = pdf.NewRenderer(pdf.DefaultTheme())
	}
	return &Roster{
		clients:   clients,
		entries:   stats,
		anamnesis: an,
		limit:     opts.Concurrency,
		loc:       opts.Location,
		log:       opts.Logger,
		pdf:       opts.PDF,
		now:       time.Now,
	}
}

// LoadAll devuelve los clientes del owner ordenados por nombre con sus
// estadísticas. Si una consulta de estadística falla, ese valor queda en
// cero/vacío y se loguea; la lista se devuelve igual.
func (r *Roster) LoadAll(ctx context.Context, ownerUserID string) ([]Row, error) {
	return r.Search(ctx, ownerUserID, "")
}

// Search es LoadAll filtrando por substring del nombre.
func (r *Roster) Search(ctx context.Context, ownerUserID, query string) ([]Row, error) {
	list, err := r.clients.List(ctx, ownerUserID, query)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, len(list))
	for i, c := range list {
		rows[i] = Row{Client: c}
	}

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i := range rows {
		r.fill(ctx, &g, &rows[i])
	}
	_ = g.Wait()

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows, nil
}

// Row devuelve un único cliente con estadísticas.
func (r *Roster) Row(ctx context.Context, ownerUserID, clientID string) (Row, error) {
	c, err := r.clients.GetByID(ctx, ownerUserID, clientID)
	if err != nil {
		return Row{}, err
	}
	row := Row{Client: c}

	var g errgroup.Group
	g.SetLimit(r.limit)
	r.fill(ctx, &g, &row)
	_ = g.Wait()

	return row, nil
}

// fill encola las tres consultas; cada goroutine escribe un campo distinto.
func (r *Roster) fill(ctx context.Context, g *errgroup.Group, row *Row) {
	owner, name, id := row.OwnerUserID, row.Name, row.ID

	g.Go(func() error {
		n, err := r.entries.CountByClientName(ctx, owner, name)
		if err != nil {
			r.statFailed("total_entries", id, err)
			return nil
		}
		row.TotalEntries = n
		return nil
	})
	g.Go(func() error {
		last, err := r.entries.LastDateByClientName(ctx, owner, name)
		if err != nil {
			r.statFailed("last_entry_date", id, err)
			return nil
		}
		row.LastEntryDate = last
		return nil
	})
	g.Go(func() error {
		next, ok, err := r.entries.NextConsultation(ctx, owner, id)
		if err != nil {
			r.statFailed("next_consultation", id, err)
			return nil
		}
		if ok {
			row.NextConsultationDate = next.Date
			if next.Consultation != nil && !next.Consultation.StartTime.IsZero() {
				row.NextConsultationTime = next.Consultation.StartTime.In(r.loc).Format("15:04")
			}
		}
		return nil
	})
}

func (r *Roster) statFailed(stat, clientID string, err error) {
	r.log.Warn("roster stat failed", map[string]any{
		"stat":      stat,
		"client_id": clientID,
		"error":     err.Error(),
	})
}

// Add crea el cliente y devuelve la lista actualizada.
func (r *Roster) Add(ctx context.Context, ownerUserID string, in CreateInput) (Client, []Row, error) {
	c, err := r.clients.Create(ctx, ownerUserID, in)
	if err != nil {
		return Client{}, nil, err
	}
	rows, err := r.LoadAll(ctx, ownerUserID)
	return c, rows, err
}

// Update edita el cliente y devuelve la lista actualizada.
func (r *Roster) Update(ctx context.Context, ownerUserID, clientID string, in UpdateInput) (Client, []Row, error) {
	c, err := r.clients.Update(ctx, ownerUserID, clientID, in)
	if err != nil {
		return Client{}, nil, err
	}
	rows, err := r.LoadAll(ctx, ownerUserID)
	return c, rows, err
}

// Remove borra las anamneses del cliente y después el cliente, así un
// fallo a mitad de camino no deja fichas sin dueño. Los registros de agenda
// quedan (conservan el nombre desnormalizado).
func (r *Roster) Remove(ctx context.Context, ownerUserID, clientID string) ([]Row, error) {
	if _, err := r.clients.GetByID(ctx, ownerUserID, clientID); err != nil {
		return nil, err
	}
	if r.anamnesis != nil {
		if err := r.anamnesis.DeleteByClient(ctx, ownerUserID, clientID); err != nil {
			return nil, err
		}
	}
	if err := r.clients.Delete(ctx, ownerUserID, clientID); err != nil {
		return nil, err
	}
	return r.LoadAll(ctx, ownerUserID)
}

// ExportPDF escribe la ficha del cliente en w.
func (r *Roster) ExportPDF(ctx context.Context, ownerUserID, clientID string, w io.Writer) error {
	row, err := r.Row(ctx, ownerUserID, clientID)
	if err != nil {
		return err
	}

	var sessions []anamnesis.Anamnesis
	if r.anamnesis != nil {
		sessions, err = r.anamnesis.ListByClient(ctx, ownerUserID, clientID)
		if err != nil {
			return err
		}
	}

	return r.pdf.Render(w, r.report(row, sessions))
}

func (r *Roster) report(row Row, sessions []anamnesis.Anamnesis) pdf.Report {
	info := pdf.ClientInfo{
		Name:      row.Name,
		Phone:     row.Phone,
		Email:     row.Email,
		Address:   row.Address,
		Visits:    row.TotalEntries,
		LastVisit: dates.Display(row.LastEntryDate),
	}
	if row.BirthDate != nil {
		info.BirthDate = row.BirthDate.Format("02/01/2006")
	}

	out := pdf.Report{
		GeneratedAt: r.now().In(r.loc),
		Client:      info,
		Sessions:    make([]pdf.Session, 0, len(sessions)),
	}
	for _, a := range sessions {
		s := pdf.Session{
			Title: a.Title,
			Date:  a.CreatedAt.In(r.loc).Format("02/01/2006"),
		}
		for _, sec := range a.Sections() {
			s.Fields = append(s.Fields, pdf.Field{Label: sec.Label, Value: sec.Value})
		}
		out.Sessions = append(out.Sessions, s)
	}
	return out
}
