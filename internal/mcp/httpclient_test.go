package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fortivus/fortivus/internal/models"
	"github.com/google/uuid"
)

func TestHTTPClientSearchExercises(t *testing.T) {
	user := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/exercises" {
			t.Errorf("path = %q, want /api/v1/exercises", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "squat" {
			t.Errorf("q = %q, want squat", r.URL.Query().Get("q"))
		}
		if r.Header.Get("X-User-ID") != user.String() {
			t.Errorf("X-User-ID = %q, want %s", r.Header.Get("X-User-ID"), user)
		}
		json.NewEncoder(w).Encode([]models.Exercise{
			{ID: uuid.New(), Name: "Back Squat", MuscleGroup: models.MuscleQuadriceps},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, user)
	rows, err := c.SearchExercises(context.Background(), "squat", 10)
	if err != nil {
		t.Fatalf("SearchExercises: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Back Squat" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestHTTPClientGetTemplate(t *testing.T) {
	templateID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/templates/"+templateID.String() {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(templateDetail{
			Template: &models.WorkoutTemplate{ID: templateID, Name: "Leg Day"},
			Exercises: []models.TemplateExercise{
				{TemplateID: templateID, TargetSets: 4, TargetReps: 8},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, uuid.New())
	tpl, err := c.GetTemplate(context.Background(), templateID, uuid.New())
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if tpl.Name != "Leg Day" {
		t.Errorf("name = %q, want Leg Day", tpl.Name)
	}

	entries, err := c.QueryTemplateExercises(context.Background(), templateID)
	if err != nil {
		t.Fatalf("QueryTemplateExercises: %v", err)
	}
	if len(entries) != 1 || entries[0].TargetSets != 4 {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, uuid.New())
	if _, err := c.GetStreak(context.Background(), uuid.Nil); err == nil {
		t.Error("expected error for non-200 response")
	}
}
