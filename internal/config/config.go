package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.yaml.in/yaml/v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuthDev    = "dev"
	AuthLocal  = "local"
	AuthRemote = "remote"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Calendar CalendarConfig `yaml:"calendar"`
	Roster   RosterConfig   `yaml:"roster"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type AuthConfig struct {
	Mode         string         `yaml:"mode"`
	JWTSecret    string         `yaml:"jwt_secret"`
	TokenTTL     time.Duration  `yaml:"token_ttl"`
	CookieSecure bool           `yaml:"cookie_secure"`
	Operator     OperatorConfig `yaml:"operator"`
	Remote       RemoteConfig   `yaml:"remote"`
}

type OperatorConfig struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

type RemoteConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type CalendarConfig struct {
	RevealInterval time.Duration `yaml:"reveal_interval"`
}

type RosterConfig struct {
	Concurrency int `yaml:"concurrency"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Name:     "practice-agenda",
			Timezone: "America/Sao_Paulo",
		},
		HTTP: HTTPConfig{
			Port:            "8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Driver:     DriverMemory,
			SQLitePath: "data/agenda.db",
		},
		Auth: AuthConfig{
			Mode:     AuthDev,
			TokenTTL: 12 * time.Hour,
		},
		Calendar: CalendarConfig{
			RevealInterval: 30 * time.Millisecond,
		},
		Roster: RosterConfig{
			Concurrency: 4,
		},
	}
}

// Load arma la config: defaults, luego el YAML en path (si no es vacío),
// luego variables de entorno. No valida; llamar Validate.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("APP_NAME", &cfg.App.Name)
	str("TZ", &cfg.App.Timezone)
	str("PORT", &cfg.HTTP.Port)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("DB_DRIVER", &cfg.Storage.Driver)
	str("DB_DSN", &cfg.Storage.DSN)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("AUTH_MODE", &cfg.Auth.Mode)
	str("JWT_SECRET", &cfg.Auth.JWTSecret)
	str("OPERATOR_ID", &cfg.Auth.Operator.ID)
	str("OPERATOR_EMAIL", &cfg.Auth.Operator.Email)
	str("OPERATOR_NAME", &cfg.Auth.Operator.Name)
	str("OPERATOR_PASSWORD_HASH", &cfg.Auth.Operator.PasswordHash)
	str("AUTH_REMOTE_URL", &cfg.Auth.Remote.URL)
	str("AUTH_REMOTE_API_KEY", &cfg.Auth.Remote.APIKey)

	// Con DB_DSN y sin driver explícito se asume Postgres.
	if _, ok := lookup("DB_DRIVER"); !ok && cfg.Storage.DSN != "" && cfg.Storage.Driver == DriverMemory {
		cfg.Storage.Driver = DriverPostgres
	}

	if v, ok := lookup("CALENDAR_REVEAL_INTERVAL"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CALENDAR_REVEAL_INTERVAL: %w", err)
		}
		cfg.Calendar.RevealInterval = d
	}
	if v, ok := lookup("AUTH_TOKEN_TTL"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("AUTH_TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = d
	}
	if v, ok := lookup("ROSTER_CONCURRENCY"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("ROSTER_CONCURRENCY: %w", err)
		}
		cfg.Roster.Concurrency = n
	}
	if v, ok := lookup("AUTH_COOKIE_SECURE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("AUTH_COOKIE_SECURE: %w", err)
		}
		cfg.Auth.CookieSecure = b
	}
	return nil
}

// Validate junta todos los problemas en un solo error.
func (c Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.HTTP.Port); err != nil || p <= 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("http.port %q is not a valid port", c.HTTP.Port))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("app.timezone: %w", err))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			errs = append(errs, errors.New("storage.dsn is required for postgres"))
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be memory, postgres or sqlite", c.Storage.Driver))
	}

	switch c.Auth.Mode {
	case AuthDev:
	case AuthLocal:
		if len(c.Auth.JWTSecret) < 16 {
			errs = append(errs, errors.New("auth.jwt_secret must have at least 16 characters"))
		}
		op := c.Auth.Operator
		if op.ID == "" || op.Email == "" || op.PasswordHash == "" {
			errs = append(errs, errors.New("auth.operator id, email and password_hash are required for local auth"))
		}
	case AuthRemote:
		if c.Auth.Remote.URL == "" || c.Auth.Remote.APIKey == "" {
			errs = append(errs, errors.New("auth.remote url and api_key are required for remote auth"))
		}
	default:
		errs = append(errs, fmt.Errorf("auth.mode %q must be dev, local or remote", c.Auth.Mode))
	}

	if c.Calendar.RevealInterval < 0 {
		errs = append(errs, errors.New("calendar.reveal_interval must not be negative"))
	}
	if c.Roster.Concurrency < 1 {
		errs = append(errs, errors.New("roster.concurrency must be at least 1"))
	}

	return errors.Join(errs...)
}

// Location resuelve app.timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

// Addr es la dirección de escucha del server HTTP.
func (c Config) Addr() string {
	return ":" + c.HTTP.Port
}
