package models

import (
	"fmt"
	"strings"
)

// WeeklyPlan is the structured output of the plan generation endpoint. The
// producer is generative, so the shape is validated before anything consumes
// it.
type WeeklyPlan struct {
	Goal     string    `json:"goal"`
	Location string    `json:"location"`
	Days     []DayPlan `json:"days"`
}

// DayPlan is one day of a weekly plan. Rest days carry no exercises.
type DayPlan struct {
	Day       string         `json:"day"`
	Focus     string         `json:"focus"`
	Exercises []PlanExercise `json:"exercises"`
}

// PlanExercise is one prescribed exercise inside a day plan. Reps is free
// text ("8-12", "AMRAP") and parsed downstream.
type PlanExercise struct {
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  string `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

// Validate checks the structural invariants of a generated plan: at least one
// day, every day named, and every listed exercise named with sets >= 1.
// Days without exercises are allowed (rest days).
func (p *WeeklyPlan) Validate() error {
	if len(p.Days) == 0 {
		return fmt.Errorf("plan has no days")
	}
	for i, d := range p.Days {
		if strings.TrimSpace(d.Day) == "" {
			return fmt.Errorf("day %d has no name", i+1)
		}
		for j, ex := range d.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("day %q exercise %d has no name", d.Day, j+1)
			}
			if ex.Sets < 1 {
				return fmt.Errorf("day %q exercise %q has invalid sets %d", d.Day, ex.Name, ex.Sets)
			}
		}
	}
	return nil
}

// TrainingDays returns the days that carry at least one exercise.
func (p *WeeklyPlan) TrainingDays() []DayPlan {
	var out []DayPlan
	for _, d := range p.Days {
		if len(d.Exercises) > 0 {
			out = append(out, d)
		}
	}
	return out
}
