package clients

import "time"

// Client es la ficha básica de un cliente del consultorio.
// Las estadísticas de visitas no se guardan; las calcula el Roster.
type Client struct {
	ID          string
	OwnerUserID string

	Name      string
	Phone     string
	Email     string
	BirthDate *time.Time
	Address   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
