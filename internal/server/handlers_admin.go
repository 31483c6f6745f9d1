package server

import (
	"net/http"
	"strconv"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/google/uuid"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := s.store.ListUsers(r.Context(), storage.UserFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleBulkAction fans an administrative action out across the listed users.
// Each target is dispatched independently; the response reports per-target
// outcomes instead of failing the whole batch.
func (s *Server) handleBulkAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action       string      `json:"action"`
		TargetIDs    []uuid.UUID `json:"target_ids"`
		ActingUserID uuid.UUID   `json:"acting_user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	action, err := models.ParseBulkAction(req.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(req.TargetIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "target_ids is empty"})
		return
	}

	result := s.bulk.ApplyBulkAction(r.Context(), action, req.TargetIDs, req.ActingUserID)
	status := http.StatusOK
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}
