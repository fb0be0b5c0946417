// Package handlers provides HTTP handlers for the reactivities server.
//
// Handlers use interfaces to access server dependencies, avoiding
// circular imports. *store.Store satisfies ActivityStore, FormController,
// SelectionController and StateProvider.
package handlers

import (
	"context"

	"github.com/nomis52/reactivities/activity"
	"github.com/nomis52/reactivities/config"
	"github.com/nomis52/reactivities/journal"
	"github.com/nomis52/reactivities/logging"
	"github.com/nomis52/reactivities/store"
)

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// Reloader can reload its configuration.
type Reloader interface {
	Reload() error
}

// StateProvider provides a snapshot of the store.
type StateProvider interface {
	Snapshot() store.State
}

// ActivityStore reads and mutates the mirrored activities.
type ActivityStore interface {
	StateProvider
	ByDate() []activity.Activity
	Get(id string) (activity.Activity, bool)
	LoadAll(ctx context.Context)
	Create(ctx context.Context, a activity.Activity)
	Update(ctx context.Context, a activity.Activity)
	Delete(ctx context.Context, target, id string)
}

// FormController opens and closes the create/edit form.
type FormController interface {
	StateProvider
	OpenCreateForm()
	OpenEditForm(id string)
	CancelFormOpen()
}

// SelectionController selects and deselects activities.
type SelectionController interface {
	StateProvider
	Select(id string)
	CancelSelected()
}

// Subscriber delivers a state snapshot after every store change.
type Subscriber interface {
	StateProvider
	Subscribe(fn func(store.State)) func()
}

// HistoryProvider provides access to the operation journal.
type HistoryProvider interface {
	Records() []journal.Record
}

// DiagnosticsProvider provides recently captured log entries.
type DiagnosticsProvider interface {
	Entries() []logging.LogEntry
}
