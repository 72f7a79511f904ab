package auth

// Claims representa la información extraída del token.
// En este sistema hay un único operador por instalación; UserID es el owner
// de todos los registros.
type Claims struct {
	UserID string
	Email  string
	Name   string
}
