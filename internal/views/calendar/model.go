// Package calendar es el view-model del mes: qué mes se muestra, qué
// registros tiene y la grilla de días que se dibuja.
package calendar

import (
	"context"
	"sync"
	"time"

	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/platform/dates"
)

// Source es la consulta por rango que alimenta el mes.
// Lo implementa entries.Service.
type Source interface {
	ListRange(ctx context.Context, ownerUserID, from, to string) ([]entries.DayEntry, error)
}

type Option func(*Model)

// WithRevealInterval define el escalonado de Grid().Days[i].RevealDelay.
func WithRevealInterval(d time.Duration) Option {
	return func(m *Model) { m.interval = d }
}

// WithRevealer activa la revelación animada de los días después de cada
// carga. Sin revealer todos los días quedan visibles al instante.
func WithRevealer(r *Revealer) Option {
	return func(m *Model) {
		m.revealer = r
		if r != nil {
			m.interval = r.Interval()
		}
	}
}

type Model struct {
	source Source
	owner  string

	mu       sync.Mutex
	year     int
	month    time.Month
	entries  []entries.DayEntry
	loadErr  error
	gen      uint64
	revealed map[int]bool

	interval     time.Duration
	revealer     *Revealer
	cancelReveal context.CancelFunc
}

// New arranca en el mes de now. No carga nada hasta Reload/GoTo.
func New(source Source, ownerUserID string, now time.Time, opts ...Option) *Model {
	m := &Model{
		source:   source,
		owner:    ownerUserID,
		year:     now.Year(),
		month:    now.Month(),
		revealed: map[int]bool{},
		interval: DefaultRevealInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Month devuelve el mes mostrado.
func (m *Model) Month() (int, time.Month) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.year, m.month
}

func (m *Model) GoToPreviousMonth(ctx context.Context) error {
	return m.shift(ctx, -1)
}

func (m *Model) GoToNextMonth(ctx context.Context) error {
	return m.shift(ctx, 1)
}

func (m *Model) shift(ctx context.Context, delta int) error {
	m.mu.Lock()
	m.year, m.month = dates.AddMonths(m.year, m.month, delta)
	m.mu.Unlock()
	return m.Reload(ctx)
}

// GoTo cambia al mes indicado y recarga.
func (m *Model) GoTo(ctx context.Context, year int, month time.Month) error {
	m.mu.Lock()
	m.year, m.month = dates.AddMonths(year, month, 0)
	m.mu.Unlock()
	return m.Reload(ctx)
}

// Reload hace una única consulta [primer día, último día] del mes mostrado
// y reemplaza los registros. Si mientras tanto se navegó a otro mes, la
// respuesta se descarta. Si la consulta falla el mes queda vacío y el
// error queda disponible en Err().
func (m *Model) Reload(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	year, month := m.year, m.month
	m.stopRevealLocked()
	m.entries = nil
	m.loadErr = nil
	m.revealed = map[int]bool{}
	m.mu.Unlock()

	first, last := dates.MonthBounds(year, month)
	items, err := m.source.ListRange(ctx, m.owner, first, last)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil
	}
	if err != nil {
		m.loadErr = err
		return err
	}

	m.entries = items
	m.startRevealLocked(gen, dates.DaysInMonth(year, month))
	return nil
}

// Err devuelve el error de la última carga, si hubo.
func (m *Model) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadErr
}

// Entries devuelve una copia de los registros del mes.
func (m *Model) Entries() []entries.DayEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entries.DayEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// HasEntry indica si algún registro cargado cae en ese día del mes.
func (m *Model) HasEntry(day int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(day) > 0
}

func (m *Model) countLocked(day int) int {
	key := dates.ISODate(m.year, m.month, day)
	n := 0
	for _, e := range m.entries {
		if e.Date == key {
			n++
		}
	}
	return n
}

// SelectDay devuelve la clave del día para navegar al detalle.
func (m *Model) SelectDay(day int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return dates.ISODate(m.year, m.month, day)
}

// Revealed indica si el día ya fue revelado por la animación.
func (m *Model) Revealed(day int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revealed[day]
}

// Close corta una revelación en curso.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopRevealLocked()
}

type Day struct {
	Day         int
	Date        string
	HasEntry    bool
	Count       int
	Revealed    bool
	RevealDelay time.Duration
}

// Grid es lo que se dibuja: huecos antes del día 1 y luego los días 1..N.
// La última fila puede quedar incompleta.
type Grid struct {
	Year          int
	Month         time.Month
	LeadingBlanks int
	Days          []Day
}

func (m *Model) Grid() Grid {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := dates.DaysInMonth(m.year, m.month)
	delays := RevealSchedule(n, m.interval)

	g := Grid{
		Year:          m.year,
		Month:         m.month,
		LeadingBlanks: dates.StartingWeekday(m.year, m.month),
		Days:          make([]Day, 0, n),
	}
	for d := 1; d <= n; d++ {
		count := m.countLocked(d)
		g.Days = append(g.Days, Day{
			Day:         d,
			Date:        dates.ISODate(m.year, m.month, d),
			HasEntry:    count > 0,
			Count:       count,
			Revealed:    m.revealed[d],
			RevealDelay: delays[d-1],
		})
	}
	return g
}

func (m *Model) startRevealLocked(gen uint64, days int) {
	if m.revealer == nil {
		for d := 1; d <= days; d++ {
			m.revealed[d] = true
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelReveal = cancel
	go m.revealer.Run(ctx, days, func(day int) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen == m.gen {
			m.revealed[day] = true
		}
	})
}

func (m *Model) stopRevealLocked() {
	if m.cancelReveal != nil {
		m.cancelReveal()
		m.cancelReveal = nil
	}
}
