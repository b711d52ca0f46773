package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrWorkoutNotFound = fmt.Errorf("workout %w", ErrNotFound)
)

// ExerciseEntry is one exercise performed (or planned) inside a workout
type ExerciseEntry struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"` // kg
	Notes  string  `json:"notes,omitempty"`
}

// Volume = sets * reps * weight
func (e ExerciseEntry) Volume() float64 {
	return float64(e.Sets) * float64(e.Reps) * e.Weight
}

// WorkoutRecord is a logged workout or a reusable template owned by one user
type WorkoutRecord struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Name       string          `json:"name"`
	Timestamp  time.Time       `json:"timestamp"`  // when it was performed; zero for templates
	CreatedAt  time.Time       `json:"created_at"` // when the record was created
	Exercises  []ExerciseEntry `json:"exercises"`
	Notes      string          `json:"notes,omitempty"`
	IsTemplate bool            `json:"is_template"`
}

// Clone returns a deep copy so callers can't mutate repository state
func (w *WorkoutRecord) Clone() *WorkoutRecord {
	if w == nil {
		return nil
	}
	c := *w
	c.Exercises = CloneExercises(w.Exercises)
	return &c
}

// CloneExercises copies an exercise list; nil stays nil
func CloneExercises(in []ExerciseEntry) []ExerciseEntry {
	if in == nil {
		return nil
	}
	out := make([]ExerciseEntry, len(in))
	copy(out, in)
	return out
}

// WorkoutDraft is the user input for a new workout or template
type WorkoutDraft struct {
	Name      string          `json:"name"`
	Exercises []ExerciseEntry `json:"exercises"`
	Notes     string          `json:"notes"`
}

// Validate checks the draft is loggable: a name and at least one well-formed exercise
func (d WorkoutDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("name", "workout name is required")
	}
	return ValidateExercises(d.Exercises)
}

// ValidateExercises requires a non-empty list of entries with positive sets/reps
// and non-negative weight
func ValidateExercises(exercises []ExerciseEntry) error {
	if len(exercises) == 0 {
		return NewValidationError("exercises", "at least one exercise is required")
	}
	for i, ex := range exercises {
		field := fmt.Sprintf("exercises[%d]", i)
		switch {
		case strings.TrimSpace(ex.Name) == "":
			return NewValidationError(field+".name", "exercise name is required")
		case ex.Sets <= 0:
			return NewValidationError(field+".sets", "sets must be positive")
		case ex.Reps <= 0:
			return NewValidationError(field+".reps", "reps must be positive")
		case ex.Weight < 0:
			return NewValidationError(field+".weight", "weight cannot be negative")
		}
	}
	return nil
}

// WorkoutPatch carries the mutable fields of an update. Nil fields are left unchanged.
type WorkoutPatch struct {
	Name      *string         `json:"name,omitempty"`
	Exercises []ExerciseEntry `json:"exercises,omitempty"`
	Notes     *string         `json:"notes,omitempty"`
}

// Apply writes the patch onto a copy of w and returns it
func (p WorkoutPatch) Apply(w *WorkoutRecord) *WorkoutRecord {
	updated := w.Clone()
	if p.Name != nil {
		updated.Name = *p.Name
	}
	if p.Exercises != nil {
		updated.Exercises = CloneExercises(p.Exercises)
	}
	if p.Notes != nil {
		updated.Notes = *p.Notes
	}
	return updated
}

// WorkoutStore persists a user's workouts and templates as whole collections
type WorkoutStore interface {
	LoadWorkouts(ctx context.Context, userID string) ([]*WorkoutRecord, error)
	SaveWorkouts(ctx context.Context, userID string, workouts []*WorkoutRecord) error
	LoadTemplates(ctx context.Context, userID string) ([]*WorkoutRecord, error)
	SaveTemplates(ctx context.Context, userID string, templates []*WorkoutRecord) error
}

// IsNotFound reports whether err is any of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
