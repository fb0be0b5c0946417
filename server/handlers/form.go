package handlers

import "net/http"

// FormHandler opens and closes the create/edit form.
type FormHandler struct {
	form FormController
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(form FormController) *FormHandler {
	return &FormHandler{
		form: form,
	}
}

// OpenCreate handles POST /api/form/create.
func (h *FormHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	h.form.OpenCreateForm()
	writeJSON(w, http.StatusOK, h.form.Snapshot())
}

// OpenEdit handles POST /api/form/edit/{id}.
func (h *FormHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	h.form.OpenEditForm(r.PathValue("id"))
	writeJSON(w, http.StatusOK, h.form.Snapshot())
}

// Cancel handles DELETE /api/form.
func (h *FormHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.form.CancelFormOpen()
	writeJSON(w, http.StatusOK, h.form.Snapshot())
}
