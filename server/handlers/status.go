package handlers

import (
	"net/http"
	"time"

	"github.com/nomis52/reactivities/server/types"
)

// NextSyncResponse describes the next scheduled LoadAll.
type NextSyncResponse struct {
	Scheduled bool       `json:"scheduled"`
	NextSync  *time.Time `json:"next_sync,omitempty"`
}

// StatusResponse is the consolidated response for /api/status.
type StatusResponse struct {
	Server         types.ServerProperties `json:"server"`
	APIBaseURL     string                 `json:"api_base_url"`
	Activities     int                    `json:"activities"`
	LoadingInitial bool                   `json:"loading_initial"`
	Submitting     bool                   `json:"submitting"`
	NextSync       NextSyncResponse       `json:"next_sync"`
}

// StatusProvider aggregates what the status endpoint reports.
type StatusProvider interface {
	ConfigProvider
	Properties() types.ServerProperties
	NextSync() *time.Time
}

// StatusHandler handles requests for the consolidated status endpoint.
type StatusHandler struct {
	provider StatusProvider
	store    StateProvider
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(provider StatusProvider, store StateProvider) *StatusHandler {
	return &StatusHandler{
		provider: provider,
		store:    store,
	}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state := h.store.Snapshot()
	next := h.provider.NextSync()

	resp := StatusResponse{
		Server:         h.provider.Properties(),
		Activities:     len(state.Activities),
		LoadingInitial: state.LoadingInitial,
		Submitting:     state.Submitting,
		NextSync: NextSyncResponse{
			Scheduled: next != nil,
			NextSync:  next,
		},
	}
	if cfg := h.provider.Config(); cfg != nil {
		resp.APIBaseURL = cfg.Redacted().API.BaseURL
	}

	writeJSON(w, http.StatusOK, resp)
}
