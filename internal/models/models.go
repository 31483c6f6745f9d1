package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MuscleGroup categorizes exercises by the primary muscle trained.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "chest"
	MuscleBack       MuscleGroup = "back"
	MuscleShoulders  MuscleGroup = "shoulders"
	MuscleBiceps     MuscleGroup = "biceps"
	MuscleQuadriceps MuscleGroup = "quadriceps"
	MuscleCore       MuscleGroup = "core"
)

// Valid reports whether the muscle group is one of the known values.
func (m MuscleGroup) Valid() bool {
	switch m {
	case MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleQuadriceps, MuscleCore:
		return true
	}
	return false
}

// Equipment categorizes exercises by the equipment they need.
type Equipment string

const (
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentDumbbells  Equipment = "dumbbells"
	EquipmentBarbell    Equipment = "barbell"
)

// Valid reports whether the equipment is one of the known values.
func (e Equipment) Valid() bool {
	switch e {
	case EquipmentBodyweight, EquipmentDumbbells, EquipmentBarbell:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a workout session.
// Active sessions accept mutations; finished and cancelled are terminal.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionFinished  SessionStatus = "finished"
	SessionCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionFinished || s == SessionCancelled
}

// Exercise is an entry in the shared exercise catalog. Custom entries are
// created lazily when a referenced name has no existing match.
type Exercise struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	MuscleGroup MuscleGroup `json:"muscle_group"`
	Equipment   Equipment   `json:"equipment"`
	IsCustom    bool        `json:"is_custom"`
	CreatedBy   *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// WorkoutTemplate is a named, ordered collection of exercise targets owned by
// a single user. Entries are replaced wholesale on resave.
type WorkoutTemplate struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateExercise is one ordered entry of a template. Its lifecycle is tied
// to the parent template.
type TemplateExercise struct {
	TemplateID  uuid.UUID `json:"template_id"`
	ExerciseID  uuid.UUID `json:"exercise_id"`
	SortOrder   int       `json:"sort_order"`
	TargetSets  int       `json:"target_sets"`
	TargetReps  int       `json:"target_reps"`
	RestSeconds int       `json:"rest_seconds"`
	Notes       string    `json:"notes,omitempty"`
}

// WorkoutSession is one tracked workout from start to finish or cancellation.
type WorkoutSession struct {
	ID              uuid.UUID     `json:"id"`
	OwnerID         uuid.UUID     `json:"owner_id"`
	Name            string        `json:"name"`
	Status          SessionStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
}

// SessionExercise is one exercise added to an active session.
type SessionExercise struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SortOrder  int       `json:"sort_order"`
}

// ExerciseSet is a single logged set. A set transitions from pending to
// completed exactly once.
type ExerciseSet struct {
	ID                uuid.UUID  `json:"id"`
	SessionExerciseID uuid.UUID  `json:"session_exercise_id"`
	SetNumber         int        `json:"set_number"`
	Weight            float64    `json:"weight"`
	Reps              int        `json:"reps"`
	IsCompleted       bool       `json:"is_completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// PersonalRecord is an append-only best-weight record per owner and exercise.
type PersonalRecord struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	Weight       float64   `json:"weight"`
	RepsAtWeight int       `json:"reps_at_weight"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// User is an account row. Banned users keep their data but lose access.
type User struct {
	ID          uuid.UUID `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	XP          int64     `json:"xp"`
	StreakDays  int       `json:"streak_days"`
	IsBanned    bool      `json:"is_banned"`
	CreatedAt   time.Time `json:"created_at"`
}

// BulkAction is an administrative action applied to a set of users.
type BulkAction string

const (
	ActionBan    BulkAction = "ban"
	ActionDelete BulkAction = "delete"
)

// Valid reports whether the action is supported.
func (a BulkAction) Valid() bool {
	return a == ActionBan || a == ActionDelete
}

// ParseBulkAction converts a wire string into a BulkAction.
func ParseBulkAction(s string) (BulkAction, error) {
	a := BulkAction(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown bulk action %q", s)
	}
	return a, nil
}
