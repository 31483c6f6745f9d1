package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/fortivus/fortivus/internal/planner"
	"github.com/fortivus/fortivus/internal/storage"
	"github.com/fortivus/fortivus/internal/template"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := s.store.SearchExercises(r.Context(), q, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	e, err := s.store.GetExercise(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleResolveExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		ContextFocus string `json:"context_focus"`
		Location     string `json:"location"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := s.resolver.Resolve(r.Context(), req.Name, req.ContextFocus, userID(r), req.Location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]uuid.UUID{"exercise_id": id})
}

// templateRequest is the shared body shape for build and resave.
type templateRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Exercises    []template.ExerciseInput `json:"exercises"`
	ContextFocus string                   `json:"context_focus"`
	Location     string                   `json:"location"`
	Confirm      bool                     `json:"confirm"`
}

func (s *Server) handleBuildTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.builder.Build(r.Context(), req.Name, req.Description, req.Exercises, userID(r), req.ContextFocus, req.Location)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleResaveTemplate replaces a template's entries wholesale. The operation
// is destructive, so the request must carry confirm=true.
func (s *Server) handleResaveTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req templateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "resave replaces all entries and cannot be undone; set confirm to proceed",
		})
		return
	}

	result, err := s.builder.Resave(r.Context(), id, req.Exercises, userID(r), req.ContextFocus, req.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListTemplates(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	t, err := s.store.GetTemplate(r.Context(), id, userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries, err := s.store.QueryTemplateExercises(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"template":  t,
		"exercises": entries,
	})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTemplate(r.Context(), id, userID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuildWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan *models.WeeklyPlan `json:"plan"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Plan == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan is required"})
		return
	}

	result, err := s.builder.BuildWeek(r.Context(), req.Plan, userID(r))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleGeneratePlan requests a weekly plan from the generation endpoint.
// With apply=true the plan is also materialized into templates, one per
// training day.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Profile planner.ProfileInput `json:"profile"`
		Apply   bool                 `json:"apply"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	plan, err := s.plans.GeneratePlan(r.Context(), req.Profile)
	if err != nil {
		s.log.Error("plan generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"plan": plan}
	if req.Apply {
		week, err := s.builder.BuildWeek(r.Context(), plan, userID(r))
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp["week"] = week
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := s.tracker.Start(r.Context(), userID(r), req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	sess, err := s.store.GetSession(r.Context(), id, userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAddSessionExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
		SortOrder  int       `json:"sort_order"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	e, err := s.tracker.AddExercise(r.Context(), id, req.ExerciseID, userID(r), req.SortOrder)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		SetNumber int     `json:"set_number"`
		Weight    float64 `json:"weight"`
		Reps      int     `json:"reps"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	set, err := s.tracker.AddSet(r.Context(), id, userID(r), req.SetNumber, req.Weight, req.Reps)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	pr, err := s.tracker.CompleteSet(r.Context(), id, userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"personal_record": pr})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.tracker.DeleteSet(r.Context(), id, userID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	sess, err := s.tracker.Finish(r.Context(), id, userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	if err := s.tracker.Cancel(r.Context(), id, userID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.store.QueryPersonalRecords(r.Context(), userID(r), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.store.Leaderboard(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	days, err := s.store.GetStreak(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak_days": days})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps storage sentinels to HTTP statuses: missing rows to 404,
// state conflicts to 409, everything else to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrActiveSessionExists),
		errors.Is(err, storage.ErrSessionNotActive),
		errors.Is(err, storage.ErrSetCompleted):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
