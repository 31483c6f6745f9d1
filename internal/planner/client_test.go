package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fortivus/fortivus/internal/models"
)

func validPlan() *models.WeeklyPlan {
	return &models.WeeklyPlan{
		Goal:     "Strength",
		Location: "gym",
		Days: []models.DayPlan{
			{Day: "Monday", Focus: "Leg Day", Exercises: []models.PlanExercise{{Name: "Squats", Sets: 4, Reps: "5"}}},
			{Day: "Tuesday"},
		},
	}
}

// TestGeneratePlan verifies the happy path returns a validated plan.
func TestGeneratePlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-plan" {
			t.Errorf("path = %q, want /generate-plan", r.URL.Path)
		}
		json.NewEncoder(w).Encode(generateResponse{Plan: validPlan()})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "coach-v1", slog.Default())
	plan, err := c.GeneratePlan(context.Background(), ProfileInput{Goals: "strength"})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if len(plan.Days) != 2 {
		t.Errorf("days = %d, want 2", len(plan.Days))
	}
}

// TestGeneratePlanRejectsInvalidShape verifies schema validation at the
// boundary: a generative producer is never trusted as-is.
func TestGeneratePlanRejectsInvalidShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bad := &models.WeeklyPlan{Days: []models.DayPlan{
			{Day: "Monday", Exercises: []models.PlanExercise{{Name: "", Sets: 3}}},
		}}
		json.NewEncoder(w).Encode(generateResponse{Plan: bad})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "coach-v1", slog.Default())
	if _, err := c.GeneratePlan(context.Background(), ProfileInput{}); err == nil {
		t.Error("expected validation error for malformed plan")
	}
}

// TestGeneratePlanRetriesServerError verifies one retry on a 5xx response.
func TestGeneratePlanRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Plan: validPlan()})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "coach-v1", slog.Default())
	if _, err := c.GeneratePlan(context.Background(), ProfileInput{}); err != nil {
		t.Fatalf("GeneratePlan after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

// TestGeneratePlanDoesNotRetryBadRequest verifies 4xx responses fail fast.
func TestGeneratePlanDoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad profile", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", "coach-v1", slog.Default())
	if _, err := c.GeneratePlan(context.Background(), ProfileInput{}); err == nil {
		t.Error("expected error for bad request")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}
