package router

import (
	"net/http"
	"time"

	_ "practice-agenda/docs"
	"practice-agenda/internal/adapters/auth/local"
	mem "practice-agenda/internal/adapters/storage/memory"
	"practice-agenda/internal/domain/anamnesis"
	"practice-agenda/internal/domain/clients"
	"practice-agenda/internal/domain/entries"
	"practice-agenda/internal/export/pdf"
	"practice-agenda/internal/middleware"
	"practice-agenda/internal/platform/logger"
	"practice-agenda/internal/ports/auth"
	"practice-agenda/internal/views/calendar"
	"practice-agenda/internal/views/daydetail"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Stores agrupa los repositorios. Los que vengan nil se crean in-memory.
type Stores struct {
	Clients   clients.Repository
	Entries   entries.Repository
	Anamnesis anamnesis.Repository
}

type Options struct {
	Logger logger.Logger // nil => descarta

	AuthVerifier  auth.AuthVerifier  // nil => modo dev (X-Debug-User-ID)
	Authenticator auth.Authenticator // nil => sin /auth/login
	TokenTTL      time.Duration
	CookieSecure  bool

	Stores Stores

	Location          *time.Location // zona del consultorio; nil => UTC
	RevealInterval    time.Duration
	RosterConcurrency int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if opts.Authenticator != nil {
		r.Post("/auth/login", local.Login(opts.Authenticator, opts.TokenTTL, opts.CookieSecure))
	}
	r.Post("/auth/logout", local.Logout(opts.CookieSecure))

	stores := opts.Stores
	if stores.Clients == nil {
		stores.Clients = mem.NewClientRepo()
	}
	if stores.Entries == nil {
		stores.Entries = mem.NewEntryRepo()
	}
	if stores.Anamnesis == nil {
		stores.Anamnesis = mem.NewAnamnesisRepo()
	}

	// Services por módulo. clients va primero: los otros lo usan para
	// resolver nombre y owner de un cliente.
	clientsSvc := clients.NewService(stores.Clients)
	entriesSvc := entries.NewService(stores.Entries, clientsSvc, loc)
	anamnesisSvc := anamnesis.NewService(stores.Anamnesis, clientsSvc)

	roster := clients.NewRoster(clientsSvc, entriesSvc, anamnesisSvc, clients.RosterOptions{
		Concurrency: opts.RosterConcurrency,
		Location:    loc,
		Logger:      log.With(map[string]any{"component": "roster"}),
		PDF:         pdf.NewRenderer(pdf.DefaultTheme()),
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Get("/auth/me", local.Me())

		calendar.RegisterRoutes(r, entriesSvc, opts.RevealInterval)
		daydetail.RegisterRoutes(r, entriesSvc)
		entries.RegisterRoutes(r, entriesSvc)
		clients.RegisterRoutes(r, roster)
		anamnesis.RegisterRoutes(r, anamnesisSvc)
	})

	return r
}
