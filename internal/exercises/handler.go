package exercises

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lingua-prep/backend/internal/auth"
	"github.com/lingua-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getIdentity extracts the optional caller identity from the request context.
func getIdentity(r *http.Request) string {
	return auth.IdentityFrom(r.Context())
}

func (h *Handler) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	for _, level := range req.Levels {
		if !models.ValidLevels[level] {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid level: " + string(level)})
			return
		}
	}

	if req.Mode != "" && req.Mode != models.ModeAssistedReview && req.Mode != models.ModeImmediate {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "mode must be 'assisted-review' or 'immediate'"})
		return
	}

	// Identity comes from the verified token only, never the body.
	req.CallerIdentity = getIdentity(r)

	resp, err := h.service.Resolve(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to resolve exercises"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid exercise ID"})
		return
	}

	var req models.AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	h.service.RecordAttempt(r.Context(), id, req, getIdentity(r))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
