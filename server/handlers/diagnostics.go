package handlers

import "net/http"

// DiagnosticsHandler returns recently captured warnings and errors.
type DiagnosticsHandler struct {
	provider DiagnosticsProvider
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler.
func NewDiagnosticsHandler(provider DiagnosticsProvider) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *DiagnosticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Entries())
}
