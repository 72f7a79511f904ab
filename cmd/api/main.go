package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"practice-agenda/internal/adapters/auth/local"
	pg "practice-agenda/internal/adapters/storage/postgres"
	"practice-agenda/internal/adapters/storage/sqlite"
	"practice-agenda/internal/config"
	"practice-agenda/internal/platform/logger"
	"practice-agenda/internal/router"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "agenda",
		Short:         "Agenda, clientes y fichas del consultorio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("APP_CONFIG"), "archivo YAML de configuración")

	serve := serveCmd()
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.App.Name,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			stores, closeStores, err := router.OpenStores(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStores(); err != nil {
					log.Warn("close storage failed", map[string]any{"error": err.Error()})
				}
			}()

			opts, err := router.Build(cfg, stores)
			if err != nil {
				return err
			}
			opts.Logger = log

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      router.NewRouter(opts),
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting server", map[string]any{
					"addr":    srv.Addr,
					"storage": cfg.Storage.Driver,
					"auth":    cfg.Auth.Mode,
				})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema del storage configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			switch cfg.Storage.Driver {
			case config.DriverPostgres:
				db, err := pg.Open(cfg.Storage.DSN)
				if err != nil {
					return err
				}
				defer db.Close()

				applied, err := pg.Migrate(cmd.Context(), db)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Println("schema up to date")
					return nil
				}
				for _, v := range applied {
					fmt.Printf("applied %s\n", v)
				}

			case config.DriverSQLite:
				db, err := sqlite.Open(cfg.Storage.SQLitePath)
				if err != nil {
					return err
				}
				defer sqlite.Close(db)
				fmt.Printf("schema ready at %s\n", cfg.Storage.SQLitePath)

			default:
				fmt.Println("memory storage: nothing to migrate")
			}
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Genera el hash bcrypt para OPERATOR_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := local.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
