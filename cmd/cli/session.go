package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nomis52/reactivities/apiclient"
	"github.com/nomis52/reactivities/config"
	"github.com/nomis52/reactivities/journal"
	"github.com/nomis52/reactivities/logging"
	"github.com/nomis52/reactivities/metrics"
	"github.com/nomis52/reactivities/store"
)

// session is one CLI invocation's store and its collaborators.
type session struct {
	cfg     config.Config
	logger  *slog.Logger
	journal *journal.MemoryJournal
	store   *store.Store
}

// loadConfig returns the effective config for opts. Without a config file the
// CLI logs warnings and errors to stderr so stdout stays clean for output.
func loadConfig(opts *RootOptions) (config.Config, error) {
	var cfg config.Config
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return cfg, usageError("failed to load config: %w", err)
		}
	} else {
		cfg = config.Default()
		cfg.Logging.Level = "warn"
		cfg.Logging.Output = "stderr"
	}

	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, usageError("invalid config: %w", err)
	}
	return cfg, nil
}

func newSession(opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Output:    cfg.Logging.Output,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return nil, usageError("failed to initialize logger: %w", err)
	}

	registry, err := newRegistry(cfg, logger.Logger)
	if err != nil {
		return nil, err
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(logger.With("component", "apiclient")),
	}
	if cfg.API.Token != "" {
		clientOpts = append(clientOpts, apiclient.WithToken(cfg.API.Token))
	}
	client := apiclient.New(cfg.API.BaseURL, clientOpts...)

	j := journal.NewMemoryJournal(cfg.Journal.MaxRecords)
	s, err := store.New(client,
		store.WithLogger(logger.With("component", "store")),
		store.WithJournal(j),
		store.WithMetrics(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &session{
		cfg:     cfg,
		logger:  logger.Logger,
		journal: j,
		store:   s,
	}, nil
}

// newRegistry pushes metrics via remote write when a monitoring URL is configured.
func newRegistry(cfg config.Config, logger *slog.Logger) (metrics.Registry, error) {
	if cfg.Monitoring.VictoriaMetricsURL == "" {
		return metrics.NewNopRegistry(), nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("failed to get hostname: %w", err)
	}

	return metrics.NewPushRegistry(metrics.PushConfig{
		URL:      cfg.Monitoring.VictoriaMetricsURL,
		Prefix:   cfg.Monitoring.MetricsPrefix,
		Job:      cfg.Monitoring.JobName,
		Instance: hostname,
		Logger:   logger.With("component", "metrics"),
	}), nil
}

// lastError turns a failed final store operation into an error.
func (s *session) lastError() error {
	rec, ok := s.journal.Last()
	if !ok || rec.Error == "" {
		return nil
	}
	return &exitError{
		code: exitFailure,
		err:  fmt.Errorf("%s failed: %s", rec.Operation, rec.Error),
	}
}
