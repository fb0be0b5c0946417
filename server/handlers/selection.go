package handlers

import "net/http"

// SelectionHandler changes the selected activity.
type SelectionHandler struct {
	selection SelectionController
}

// NewSelectionHandler creates a new SelectionHandler.
func NewSelectionHandler(selection SelectionController) *SelectionHandler {
	return &SelectionHandler{
		selection: selection,
	}
}

// Select handles PUT /api/selection/{id}.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	h.selection.Select(r.PathValue("id"))
	writeJSON(w, http.StatusOK, h.selection.Snapshot())
}

// Cancel handles DELETE /api/selection.
func (h *SelectionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.selection.CancelSelected()
	writeJSON(w, http.StatusOK, h.selection.Snapshot())
}
