// Package server provides an HTTP server around a single activity store.
//
// The server mirrors the activities API in memory and exposes the store's
// state and operations to a UI over JSON, with live updates as server-sent
// events.
//
// # Endpoints
//
//   - GET /health - Simple health check, returns "ok"
//   - GET /api/status - Build info, API base URL, flags and next scheduled sync
//   - GET /api/state - Full store state (activities by date, selection, flags)
//   - GET /api/activities - Activities sorted by date
//   - GET /api/activities/{id} - One activity
//   - POST /api/activities/load - Reload all activities from the API
//   - POST /api/activities - Create an activity
//   - PUT /api/activities/{id} - Update an activity
//   - DELETE /api/activities/{id}?target=name - Delete an activity
//   - POST /api/form/create, POST /api/form/edit/{id}, DELETE /api/form - Form state
//   - PUT /api/selection/{id}, DELETE /api/selection - Selection
//   - GET /api/events - Server-sent events, one per state change
//   - GET /api/history - Recent store operations
//   - GET /api/diagnostics - Recent warnings and errors
//   - GET /config - Returns current store configuration as YAML
//   - POST /reload - Reloads store configuration from disk
//   - GET /metrics - Prometheus metrics
//
// # Architecture
//
// The store is created once and lives as long as the server. Config-derived
// dependencies (the API client) are swapped atomically on reload, so a reload
// never drops the registry.
//
// # Example
//
//	srv, err := server.New(srvCfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/reactivities/apiclient"
	"github.com/nomis52/reactivities/buildinfo"
	"github.com/nomis52/reactivities/config"
	"github.com/nomis52/reactivities/journal"
	"github.com/nomis52/reactivities/logging"
	"github.com/nomis52/reactivities/metrics"
	serverconfig "github.com/nomis52/reactivities/server/config"
	"github.com/nomis52/reactivities/server/cron"
	"github.com/nomis52/reactivities/server/handlers"
	"github.com/nomis52/reactivities/server/types"
	"github.com/nomis52/reactivities/store"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultRecorderSize    = 200

	metricConfigReloads = "server_config_reloads_total"
)

// serverDeps holds config-derived dependencies that are swapped atomically on reload.
type serverDeps struct {
	config *config.Config
	client *apiclient.Client
}

// Server is the HTTP server for the reactivities store.
type Server struct {
	cfg        *serverconfig.ServerConfig
	addr       string
	logger     *slog.Logger
	base       *logging.Logger
	recorder   *logging.Recorder
	deps       atomic.Pointer[serverDeps]
	gateway    *reloadableGateway
	store      *store.Store
	journal    *journal.MemoryJournal
	metrics    *metrics.ScrapeRegistry
	reloads    metrics.CounterVec
	cron       *cron.Manager
	certLoader *CertLoader
	httpServer *http.Server
	listener   net.Listener
	props      types.ServerProperties
}

// Option configures a Server.
type Option func(*Server) error

// WithListenAddr overrides the listen address from the server config.
func WithListenAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithListener serves on an existing listener instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(s *Server) error {
		s.listener = l
		s.addr = l.Addr().String()
		return nil
	}
}

// New creates a new Server from the server config.
// It loads the store configuration and initializes all dependencies.
func New(cfg *serverconfig.ServerConfig, opts ...Option) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}

	recorder := logging.NewRecorder(defaultRecorderSize)

	s := &Server{
		cfg:      cfg,
		addr:     cfg.Listener.Addr,
		logger:   logging.WithRecorder(logger.Logger, recorder, slog.LevelWarn),
		base:     logger,
		recorder: recorder,
		gateway:  &reloadableGateway{},
		props: types.ServerProperties{
			Build:     buildinfo.Get(),
			StartedAt: time.Now(),
		},
	}
	if hostname, err := os.Hostname(); err == nil {
		s.props.Hostname = hostname
	}

	s.metrics, err = metrics.NewScrapeRegistry()
	if err != nil {
		return nil, fmt.Errorf("creating metrics registry: %w", err)
	}
	s.reloads, err = s.metrics.NewCounterVec(prometheus.CounterOpts{
		Name: metricConfigReloads,
		Help: "Count of store config reloads, by result",
	}, []string{"result"})
	if err != nil {
		return nil, fmt.Errorf("creating %s metric: %w", metricConfigReloads, err)
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}

	// The journal size is fixed at startup; later reloads do not resize it.
	s.journal = journal.NewMemoryJournal(s.Config().Journal.MaxRecords)

	s.store, err = store.New(s.gateway,
		store.WithLogger(s.logger.With("component", "store")),
		store.WithJournal(s.journal),
		store.WithMetrics(s.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if cfg.Sync.Schedule != "" {
		s.cron, err = cron.NewManager(cfg.Sync.Schedule, s.store.LoadAll, s.logger.With("component", "cron"))
		if err != nil {
			return nil, fmt.Errorf("creating sync schedule: %w", err)
		}
	}

	if cfg.TLSEnabled() {
		s.certLoader, err = NewCertLoader(cfg.Listener.TLSCert, cfg.Listener.TLSKey, s.logger)
		if err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogLevel changes the server's log level at runtime.
func (s *Server) SetLogLevel(level slog.Level) {
	s.base.SetLevel(level)
}

// Store returns the server's activity store.
func (s *Server) Store() *store.Store {
	return s.store
}

// Properties returns metadata about the running server.
func (s *Server) Properties() types.ServerProperties {
	return s.props
}

// Reload reads the store config from disk and rebuilds the API client.
func (s *Server) Reload() error {
	cfg, err := config.LoadConfig(s.cfg.StoreConfig)
	if err != nil {
		s.reloads.With(prometheus.Labels{"result": "failure"}).Inc()
		return fmt.Errorf("loading store config %s: %w", s.cfg.StoreConfig, err)
	}

	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(s.logger.With("component", "apiclient")),
	}
	if cfg.API.Token != "" {
		opts = append(opts, apiclient.WithToken(cfg.API.Token))
	}
	client := apiclient.New(cfg.API.BaseURL, opts...)

	s.deps.Store(&serverDeps{
		config: &cfg,
		client: client,
	})
	s.gateway.set(client)
	s.reloads.With(prometheus.Labels{"result": "success"}).Inc()

	s.logger.Info("configuration loaded",
		"config_path", s.cfg.StoreConfig,
		"api_base_url", client.BaseURL(),
	)
	return nil
}

// Config returns the current store configuration.
func (s *Server) Config() *config.Config {
	return s.deps.Load().config
}

// NextSync returns the next scheduled sync time, or nil if no schedule is configured.
func (s *Server) NextSync() *time.Time {
	if s.cron == nil {
		return nil
	}
	next := s.cron.NextRun()
	return &next
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done.
// The sync schedule and file watching start with the server.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Sync.LoadOnStart {
		s.logger.Info("loading activities")
		s.store.LoadAll(ctx)
	}

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	if s.certLoader != nil {
		s.httpServer.TLSConfig = &tls.Config{
			MinVersion:     tls.VersionTLS12,
			GetCertificate: s.certLoader.GetCertificate,
		}
	}

	if s.cron != nil {
		s.logger.Info("starting sync schedule",
			"schedules", s.cron.Schedules(),
			"next_run", s.cron.NextRun(),
		)
		s.cron.Start(ctx)
	}

	if s.cfg.Watch {
		if err := s.startWatching(ctx); err != nil {
			return err
		}
	}

	listener := s.listener
	if listener == nil {
		var err error
		listener, err = net.Listen("tcp", s.addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", s.addr, err)
		}
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", listener.Addr().String(),
			"version", s.props.Build.Version,
			"git_commit", s.props.Build.GitCommit,
			"tls", s.certLoader != nil,
			"config_path", s.cfg.StoreConfig,
		)
		var err error
		if s.certLoader != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or server error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) startWatching(ctx context.Context) error {
	w, err := newFileWatcher(s.logger.With("component", "watcher"), defaultDebounce)
	if err != nil {
		return err
	}

	err = w.Add(s.cfg.StoreConfig, func() {
		if err := s.Reload(); err != nil {
			s.logger.Error("failed to reload changed configuration", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if s.certLoader != nil {
		if err := w.Add(s.cfg.Listener.TLSCert, s.certLoader.reloadAndLog); err != nil {
			return err
		}
		if err := w.Add(s.cfg.Listener.TLSKey, s.certLoader.reloadAndLog); err != nil {
			return err
		}
	}

	go w.Run(ctx)
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	activities := handlers.NewActivitiesHandler(s.store)
	form := handlers.NewFormHandler(s.store)
	selection := handlers.NewSelectionHandler(s.store)

	mux.HandleFunc("GET /health", handlers.HandleHealth)

	mux.Handle("GET /api/status", handlers.NewStatusHandler(s, s.store))
	mux.Handle("GET /api/state", handlers.NewStateHandler(s.store))
	mux.HandleFunc("GET /api/activities", activities.List)
	mux.HandleFunc("GET /api/activities/{id}", activities.Get)
	mux.HandleFunc("POST /api/activities/load", activities.Load)
	mux.HandleFunc("POST /api/activities", activities.Create)
	mux.HandleFunc("PUT /api/activities/{id}", activities.Update)
	mux.HandleFunc("DELETE /api/activities/{id}", activities.Delete)

	mux.HandleFunc("POST /api/form/create", form.OpenCreate)
	mux.HandleFunc("POST /api/form/edit/{id}", form.OpenEdit)
	mux.HandleFunc("DELETE /api/form", form.Cancel)
	mux.HandleFunc("PUT /api/selection/{id}", selection.Select)
	mux.HandleFunc("DELETE /api/selection", selection.Cancel)

	mux.Handle("GET /api/events", handlers.NewEventsHandler(s.logger, s.store))
	mux.Handle("GET /api/history", handlers.NewHistoryHandler(s.journal))
	mux.Handle("GET /api/diagnostics", handlers.NewDiagnosticsHandler(s.recorder))

	mux.Handle("GET /config", handlers.NewConfigHandler(s))
	mux.Handle("POST /reload", handlers.NewReloadHandler(s.logger, s))
	mux.Handle("GET /metrics", s.metrics.Handler())
}
