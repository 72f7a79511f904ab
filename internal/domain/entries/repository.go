package entries

import "context"

// Repository es el acceso a la tabla day_entries.
// Las fechas son claves "YYYY-MM-DD"; los rangos son inclusivos en ambos extremos.
type Repository interface {
	Create(ctx context.Context, e DayEntry) error
	Update(ctx context.Context, e DayEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (DayEntry, error)

	// ListByDateRange ordena por date asc, created_at asc.
	ListByDateRange(ctx context.Context, ownerUserID, from, to string) ([]DayEntry, error)
	// ListByDate ordena por created_at desc (el más reciente primero).
	ListByDate(ctx context.Context, ownerUserID, date string) ([]DayEntry, error)

	// Consultas auxiliares del roster de clientes.
	CountByClientName(ctx context.Context, ownerUserID, clientName string) (int, error)
	LastDateByClientName(ctx context.Context, ownerUserID, clientName string) (string, error)
	NextConsultation(ctx context.Context, ownerUserID, clientID, fromDate string) (DayEntry, bool, error)
}
