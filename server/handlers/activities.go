package handlers

import (
	"net/http"

	"github.com/nomis52/reactivities/activity"
)

// ActivitiesHandler serves the activity collection and its CRUD operations.
// Mutating requests respond with the store state once the API call finished.
type ActivitiesHandler struct {
	store ActivityStore
}

// NewActivitiesHandler creates a new ActivitiesHandler.
func NewActivitiesHandler(s ActivityStore) *ActivitiesHandler {
	return &ActivitiesHandler{
		store: s,
	}
}

// List handles GET /api/activities.
func (h *ActivitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ByDate())
}

// Get handles GET /api/activities/{id}.
func (h *ActivitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := h.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "activity not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Load handles POST /api/activities/load.
func (h *ActivitiesHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.store.LoadAll(r.Context())
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// Create handles POST /api/activities. An empty id is assigned.
func (h *ActivitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := readActivity(w, r, func(a *activity.Activity) {
		if a.ID == "" {
			a.ID = activity.NewID()
		}
	})
	if !ok {
		return
	}

	h.store.Create(r.Context(), a)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// Update handles PUT /api/activities/{id}. The path id overrides the body.
func (h *ActivitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	a, ok := readActivity(w, r, func(a *activity.Activity) {
		a.ID = id
	})
	if !ok {
		return
	}

	h.store.Update(r.Context(), a)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

// Delete handles DELETE /api/activities/{id}?target=name.
func (h *ActivitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.store.Delete(r.Context(), r.URL.Query().Get("target"), id)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}
