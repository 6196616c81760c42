package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"skiff/internal/browse"
	"skiff/internal/config"
	"skiff/internal/devices"
	"skiff/internal/settings"
)

func Logger(cfg config.Config) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.Logger.Level(cfg.LogLevel).With().Timestamp().Logger()
	return &logger
}

// Server wires the stores and adapters behind the HTTP API.
type Server struct {
	cfg      config.Config
	devices  *devices.Store
	settings *settings.Store
	fs       browse.FS
	files    *filesHandlers
	// localAPI serves the plain file surface and is reused verbatim when
	// /api/d/local/* is re-dispatched, so both paths share one handler
	// chain and answer byte-identically.
	localAPI chi.Router
}

func New(cfg config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		devices:  devices.NewStore(cfg.DevicesPath()),
		settings: settings.NewStore(cfg.SettingsPath()),
	}
	s.fs = browse.FS{Root: cfg.Root, Recents: browse.NewRecentStore()}
	s.files = &filesHandlers{fs: s.fs}
	s.localAPI = s.files.routes()
	return s
}

func NewRouter(cfg config.Config) http.Handler {
	return New(cfg).Routes()
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(zerologMiddleware(Logger(s.cfg)))
	r.Use(metricsMiddleware)

	// Dev CORS for the SPA dev server
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Handle("/metrics", promhttp.Handler())

	// The status probe is the only unauthenticated API route.
	r.Get("/api/auth/status", s.handleAuthStatus)

	r.Group(func(pr chi.Router) {
		pr.Use(s.authGate)

		pr.Get("/api/whoami", s.handleWhoami)

		pr.Get("/api/devices", s.handleDevicesList)
		pr.Post("/api/devices", s.handleDeviceAdd)
		pr.Put("/api/devices/{id}", s.handleDeviceUpdate)
		pr.Delete("/api/devices/{id}", s.handleDeviceRemove)
		pr.Get("/api/devices/{id}/health", s.handleDeviceHealth)

		pr.Get("/api/settings", s.handleSettingsGet)
		pr.Put("/api/settings", s.handleSettingsPut)

		pr.Get("/api/combos", s.handleCombosList)
		pr.Post("/api/combos", s.handleComboAdd)
		pr.Put("/api/combos/{id}", s.handleComboUpdate)
		pr.Delete("/api/combos/{id}", s.handleComboRemove)

		pr.Handle("/api/d/{deviceID}/*", http.HandlerFunc(s.dispatch))

		pr.Mount("/api", s.localAPI)
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
