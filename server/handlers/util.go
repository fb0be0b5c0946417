package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nomis52/reactivities/activity"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// readActivity decodes and validates an activity from the request body.
// On failure it writes a 400 response and returns false.
func readActivity(w http.ResponseWriter, r *http.Request, fill func(*activity.Activity)) (activity.Activity, bool) {
	var a activity.Activity
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("invalid JSON: %v", err),
		})
		return activity.Activity{}, false
	}

	fill(&a)

	if err := activity.Validate(a); err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var verr *activity.ValidationError
		if errors.As(err, &verr) {
			resp.Violations = verr.Violations
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return activity.Activity{}, false
	}
	return a, true
}
