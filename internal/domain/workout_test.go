package domain

import (
	"errors"
	"testing"
	"time"
)

func TestExerciseEntryVolume(t *testing.T) {
	tests := []struct {
		name  string
		entry ExerciseEntry
		want  float64
	}{
		{name: "squat", entry: ExerciseEntry{Name: "Squat", Sets: 3, Reps: 5, Weight: 100}, want: 1500},
		{name: "bodyweight", entry: ExerciseEntry{Name: "Push Up", Sets: 3, Reps: 20, Weight: 0}, want: 0},
		{name: "fractional weight", entry: ExerciseEntry{Name: "Curl", Sets: 2, Reps: 10, Weight: 12.5}, want: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Volume(); got != tt.want {
				t.Errorf("Volume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkoutDraftValidate(t *testing.T) {
	squat := ExerciseEntry{Name: "Squat", Sets: 3, Reps: 5, Weight: 100}

	tests := []struct {
		name      string
		draft     WorkoutDraft
		wantField string
	}{
		{name: "valid", draft: WorkoutDraft{Name: "Leg Day", Exercises: []ExerciseEntry{squat}}},
		{name: "blank name", draft: WorkoutDraft{Name: "   ", Exercises: []ExerciseEntry{squat}}, wantField: "name"},
		{name: "no exercises", draft: WorkoutDraft{Name: "Leg Day"}, wantField: "exercises"},
		{name: "zero sets", draft: WorkoutDraft{Name: "Leg Day", Exercises: []ExerciseEntry{{Name: "Squat", Sets: 0, Reps: 5}}}, wantField: "exercises[0].sets"},
		{name: "zero reps", draft: WorkoutDraft{Name: "Leg Day", Exercises: []ExerciseEntry{{Name: "Squat", Sets: 3, Reps: 0}}}, wantField: "exercises[0].reps"},
		{name: "negative weight", draft: WorkoutDraft{Name: "Leg Day", Exercises: []ExerciseEntry{{Name: "Squat", Sets: 3, Reps: 5, Weight: -1}}}, wantField: "exercises[0].weight"},
		{name: "unnamed exercise", draft: WorkoutDraft{Name: "Leg Day", Exercises: []ExerciseEntry{squat, {Sets: 1, Reps: 1}}}, wantField: "exercises[1].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Validate() = %v, want ErrValidation", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.Field != tt.wantField {
				t.Errorf("Validate() field = %v, want %s", err, tt.wantField)
			}
		})
	}
}

func TestWorkoutPatchApplyKeepsOriginalUntouched(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	original := &WorkoutRecord{
		ID:        "01HQ",
		UserID:    "u1",
		Name:      "Push",
		Timestamp: created,
		CreatedAt: created,
		Exercises: []ExerciseEntry{{Name: "Bench", Sets: 3, Reps: 8, Weight: 60}},
	}

	name := "Push (heavy)"
	updated := WorkoutPatch{
		Name:      &name,
		Exercises: []ExerciseEntry{{Name: "Bench", Sets: 5, Reps: 5, Weight: 80}},
	}.Apply(original)

	if updated.Name != name || updated.Exercises[0].Sets != 5 {
		t.Errorf("Apply() did not write patch: %+v", updated)
	}
	if updated.ID != original.ID || !updated.Timestamp.Equal(created) {
		t.Errorf("Apply() changed immutable fields: %+v", updated)
	}
	if original.Name != "Push" || original.Exercises[0].Sets != 3 {
		t.Errorf("Apply() mutated the original record: %+v", original)
	}
}

func TestInstantiatedName(t *testing.T) {
	at := time.Date(2025, 1, 9, 18, 30, 0, 0, time.UTC)
	if got := InstantiatedName("Upper A", at); got != "Upper A - 2025-01-09" {
		t.Errorf("InstantiatedName() = %q", got)
	}
	if got := DuplicateName("Upper A"); got != "Upper A (Copy)" {
		t.Errorf("DuplicateName() = %q", got)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "<p>Keep your back straight.</p>", want: "Keep your back straight."},
		{in: "<p>Step one</p><p>Step two</p>", want: "Step one Step two"},
		{in: "<ul><li>Brace</li><li>Lift &amp; lower</li></ul>", want: "Brace Lift & lower"},
		{in: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
