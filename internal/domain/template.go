package domain

import (
	"fmt"
	"time"
)

var (
	ErrTemplateNotFound = fmt.Errorf("workout template %w", ErrNotFound)
)

const (
	duplicateSuffix      = " (Copy)"
	instantiateDateStamp = "2006-01-02"
)

// DuplicateName decorates the name of a duplicated workout
func DuplicateName(name string) string {
	return name + duplicateSuffix
}

// InstantiatedName decorates a template name with the date a workout was created from it
func InstantiatedName(templateName string, at time.Time) string {
	return fmt.Sprintf("%s - %s", templateName, at.Format(instantiateDateStamp))
}

// DraftFromRecord builds a draft carrying the reusable parts of a workout
func DraftFromRecord(w *WorkoutRecord) WorkoutDraft {
	return WorkoutDraft{
		Name:      w.Name,
		Exercises: CloneExercises(w.Exercises),
		Notes:     w.Notes,
	}
}
