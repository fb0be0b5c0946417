package handlers

import "net/http"

// StateHandler handles requests for the full store state.
type StateHandler struct {
	provider StateProvider
}

// NewStateHandler creates a new StateHandler.
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Snapshot())
}
