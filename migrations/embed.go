package migrations

import "embed"

// Postgres guarda las migraciones SQL (sólo hacia adelante) embebidas en el binario.
//
//go:embed postgres/*.sql
var Postgres embed.FS
