package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/reactivities/activity"
	"github.com/nomis52/reactivities/journal"
	"github.com/nomis52/reactivities/metrics"
)

const (
	metricOperations        = "store_operations_total"
	metricOperationDuration = "store_operation_duration_seconds"
	metricRegistrySize      = "store_registry_size"

	resultSuccess = "success"
	resultFailure = "failure"
)

// Gateway is the remote API the store mirrors.
// *apiclient.Client satisfies it.
type Gateway interface {
	List(ctx context.Context) ([]activity.Activity, error)
	Create(ctx context.Context, a activity.Activity) error
	Update(ctx context.Context, a activity.Activity) error
	Delete(ctx context.Context, id string) error
}

// State is a consistent snapshot of the store.
type State struct {
	// Version increases with every change. A larger Version is a newer state.
	Version uint64 `json:"version"`

	// Activities is the registry sorted by date.
	Activities     []activity.Activity `json:"activities"`
	Selected       *activity.Activity  `json:"selected,omitempty"`
	LoadingInitial bool                `json:"loading_initial"`
	Submitting     bool                `json:"submitting"`
	EditMode       bool                `json:"edit_mode"`
	Target         string              `json:"target,omitempty"`
}

// Store mirrors the remote activities and the UI state around them.
// Use New() to create one.
type Store struct {
	gateway Gateway
	logger  *slog.Logger
	journal *journal.MemoryJournal
	reg     metrics.Registry
	metrics storeMetrics

	mu             sync.Mutex
	registry       map[string]activity.Activity
	selected       *activity.Activity
	loadingInitial bool
	submitting     bool
	editMode       bool
	target         string
	version        uint64

	// notifyMu orders deliveries. delivered is the newest Version sent.
	notifyMu  sync.Mutex
	delivered uint64

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSub     int
}

type storeMetrics struct {
	operations   metrics.CounterVec
	duration     metrics.HistogramVec
	registrySize metrics.Gauge
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger gateway failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithJournal records every gateway call in j.
func WithJournal(j *journal.MemoryJournal) Option {
	return func(s *Store) {
		s.journal = j
	}
}

// WithMetrics registers the store's metrics with reg.
func WithMetrics(reg metrics.Registry) Option {
	return func(s *Store) {
		s.reg = reg
	}
}

// New creates an empty store backed by gateway.
func New(gateway Gateway, opts ...Option) (*Store, error) {
	s := &Store{
		gateway:     gateway,
		logger:      slog.Default(),
		reg:         metrics.NewNopRegistry(),
		registry:    make(map[string]activity.Activity),
		subscribers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initMetrics() error {
	var err error
	s.metrics.operations, err = s.reg.NewCounterVec(prometheus.CounterOpts{
		Name: metricOperations,
		Help: "Count of store operations that called the API, by result",
	}, []string{"operation", "result"})
	if err != nil {
		return fmt.Errorf("creating %s metric: %w", metricOperations, err)
	}

	s.metrics.duration, err = s.reg.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricOperationDuration,
		Help:    "Duration of API calls made by the store",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	if err != nil {
		return fmt.Errorf("creating %s metric: %w", metricOperationDuration, err)
	}

	s.metrics.registrySize, err = s.reg.NewGauge(prometheus.GaugeOpts{
		Name: metricRegistrySize,
		Help: "Number of activities held in the registry",
	})
	if err != nil {
		return fmt.Errorf("creating %s metric: %w", metricRegistrySize, err)
	}
	return nil
}

// LoadAll fetches every activity and upserts it into the registry with its
// date normalized. On failure the registry is left as it was.
func (s *Store) LoadAll(ctx context.Context) {
	s.mutate(func() {
		s.loadingInitial = true
	})

	var activities []activity.Activity
	err := s.call(ctx, journal.OpLoadAll, "", "", func(ctx context.Context) error {
		var err error
		activities, err = s.gateway.List(ctx)
		return err
	})

	s.mutate(func() {
		if err == nil {
			for _, a := range activities {
				a = a.Normalized()
				s.registry[a.ID] = a
			}
		}
		s.loadingInitial = false
	})
}

// Create sends a to the API and adds it to the registry. A successful create
// closes the form.
func (s *Store) Create(ctx context.Context, a activity.Activity) {
	s.mutate(func() {
		s.submitting = true
	})

	err := s.call(ctx, journal.OpCreate, a.ID, "", func(ctx context.Context) error {
		return s.gateway.Create(ctx, a)
	})

	s.mutate(func() {
		if err == nil {
			s.registry[a.ID] = a
			s.editMode = false
		}
		s.submitting = false
	})
}

// Update sends a to the API, replaces the registry entry and selects it.
func (s *Store) Update(ctx context.Context, a activity.Activity) {
	s.mutate(func() {
		s.submitting = true
	})

	err := s.call(ctx, journal.OpUpdate, a.ID, "", func(ctx context.Context) error {
		return s.gateway.Update(ctx, a)
	})

	s.mutate(func() {
		if err == nil {
			s.registry[a.ID] = a
			s.selected = &a
			s.editMode = false
		}
		s.submitting = false
	})
}

// Delete removes the activity id. target names the UI element that asked for
// the delete and is reported by Target until the call completes.
func (s *Store) Delete(ctx context.Context, target, id string) {
	s.mutate(func() {
		s.submitting = true
		s.target = target
	})

	err := s.call(ctx, journal.OpDelete, id, target, func(ctx context.Context) error {
		return s.gateway.Delete(ctx, id)
	})

	s.mutate(func() {
		if err == nil {
			delete(s.registry, id)
		}
		s.submitting = false
		s.target = ""
	})
}

// OpenEditForm selects id and opens the form. An unknown id clears the selection.
func (s *Store) OpenEditForm(id string) {
	s.mutate(func() {
		s.selectLocked(id)
		s.editMode = true
	})
}

// OpenCreateForm opens an empty form.
func (s *Store) OpenCreateForm() {
	s.mutate(func() {
		s.editMode = true
		s.selected = nil
	})
}

// CancelSelected clears the selection.
func (s *Store) CancelSelected() {
	s.mutate(func() {
		s.selected = nil
	})
}

// CancelFormOpen closes the form.
func (s *Store) CancelFormOpen() {
	s.mutate(func() {
		s.editMode = false
	})
}

// Select selects id and closes the form. An unknown id clears the selection.
func (s *Store) Select(id string) {
	s.mutate(func() {
		s.selectLocked(id)
		s.editMode = false
	})
}

func (s *Store) selectLocked(id string) {
	if a, ok := s.registry[id]; ok {
		s.selected = &a
		return
	}
	s.selected = nil
}

// ByDate returns the registry sorted ascending by date.
func (s *Store) ByDate() []activity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byDateLocked()
}

func (s *Store) byDateLocked() []activity.Activity {
	result := make([]activity.Activity, 0, len(s.registry))
	for _, a := range s.registry {
		result = append(result, a)
	}
	activity.SortByDate(result)
	return result
}

// Get returns the activity with the given id.
func (s *Store) Get(id string) (activity.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.registry[id]
	return a, ok
}

// Selected returns the selected activity, if any.
func (s *Store) Selected() (activity.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return activity.Activity{}, false
	}
	return *s.selected, true
}

func (s *Store) LoadingInitial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingInitial
}

func (s *Store) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Store) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

func (s *Store) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Len returns the number of activities in the registry.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	state := State{
		Version:        s.version,
		Activities:     s.byDateLocked(),
		LoadingInitial: s.loadingInitial,
		Submitting:     s.submitting,
		EditMode:       s.editMode,
		Target:         s.target,
	}
	if s.selected != nil {
		sel := *s.selected
		state.Selected = &sel
	}
	return state
}

// Subscribe registers fn to receive a snapshot after every state change.
// Snapshots arrive in Version order; one overtaken by a newer change before
// delivery is skipped. fn is called without the store lock held, may read the
// store, must not mutate it and must not block for long.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subscribers, id)
	}
}

// mutate applies fn under the lock and notifies subscribers afterwards.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	before := len(s.registry)
	fn()
	if after := len(s.registry); after != before {
		s.metrics.registrySize.Set(float64(after))
	}
	s.version++
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(state)
}

// notify delivers state unless a newer state has already been delivered,
// so subscribers never see the store go backwards.
func (s *Store) notify(state State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if state.Version <= s.delivered {
		return
	}
	s.delivered = state.Version

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// call runs one gateway request, recording it in the journal and metrics.
// Failures are logged and returned so the caller can reset its flags.
func (s *Store) call(ctx context.Context, op journal.Operation, activityID, target string, fn func(context.Context) error) error {
	var rec *journal.Record
	if s.journal != nil {
		rec = s.journal.Begin(op, activityID, target)
	}

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	if rec != nil {
		s.journal.Finish(rec, err)
	}

	s.metrics.duration.With(prometheus.Labels{"operation": string(op)}).Observe(elapsed.Seconds())
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	s.metrics.operations.With(prometheus.Labels{"operation": string(op), "result": result}).Inc()

	if err != nil {
		attrs := []any{"operation", op, "error", err}
		if activityID != "" {
			attrs = append(attrs, "activity_id", activityID)
		}
		s.logger.Error("activity request failed", attrs...)
		return err
	}

	s.logger.Debug("activity request completed", "operation", op, "duration", elapsed)
	return nil
}
