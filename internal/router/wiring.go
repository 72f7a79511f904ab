package router

import (
	"context"
	"fmt"
	"time"

	"practice-agenda/internal/adapters/auth/local"
	"practice-agenda/internal/adapters/auth/remote"
	pg "practice-agenda/internal/adapters/storage/postgres"
	"practice-agenda/internal/adapters/storage/sqlite"
	"practice-agenda/internal/config"
	"practice-agenda/internal/ports/auth"
)

// OpenStores abre el storage elegido por storage.driver y aplica las
// migraciones pendientes. close libera la conexión; para memory no hace nada.
func OpenStores(cfg config.Config) (Stores, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := pg.Open(cfg.Storage.DSN)
		if err != nil {
			return Stores{}, noop, fmt.Errorf("open postgres: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return Stores{}, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		return Stores{
			Clients:   pg.NewClientsRepo(db),
			Entries:   pg.NewEntriesRepo(db),
			Anamnesis: pg.NewAnamnesisRepo(db),
		}, db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return Stores{}, noop, err
		}
		return Stores{
			Clients:   sqlite.NewClientsRepo(db),
			Entries:   sqlite.NewEntriesRepo(db),
			Anamnesis: sqlite.NewAnamnesisRepo(db),
		}, func() error { return sqlite.Close(db) }, nil

	case config.DriverMemory, "":
		return Stores{}, noop, nil

	default:
		return Stores{}, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Auth arma verifier y authenticator según auth.mode. En modo dev ambos son nil.
func Auth(cfg config.Config) (auth.AuthVerifier, auth.Authenticator, error) {
	switch cfg.Auth.Mode {
	case config.AuthLocal:
		tokens, err := local.NewTokens(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.TokenTTL)
		if err != nil {
			return nil, nil, err
		}
		authn, err := local.NewAuthenticator(local.Operator{
			ID:           cfg.Auth.Operator.ID,
			Email:        cfg.Auth.Operator.Email,
			Name:         cfg.Auth.Operator.Name,
			PasswordHash: cfg.Auth.Operator.PasswordHash,
		}, tokens)
		if err != nil {
			return nil, nil, err
		}
		return tokens, authn, nil

	case config.AuthRemote:
		v, err := remote.NewVerifier(remote.Config{
			BaseURL: cfg.Auth.Remote.URL,
			APIKey:  cfg.Auth.Remote.APIKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return v, nil, nil

	case config.AuthDev, "":
		return nil, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// Build arma las Options del router a partir de la config ya validada.
func Build(cfg config.Config, stores Stores) (Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Options{}, err
	}
	verifier, authn, err := Auth(cfg)
	if err != nil {
		return Options{}, err
	}
	return Options{
		AuthVerifier:      verifier,
		Authenticator:     authn,
		TokenTTL:          cfg.Auth.TokenTTL,
		CookieSecure:      cfg.Auth.CookieSecure,
		Stores:            stores,
		Location:          loc,
		RevealInterval:    cfg.Calendar.RevealInterval,
		RosterConcurrency: cfg.Roster.Concurrency,
	}, nil
}
