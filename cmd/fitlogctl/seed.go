package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/spf13/cobra"
)

// starterTemplates is the library a new user can be seeded with
func starterTemplates() []domain.WorkoutDraft {
	ex := func(name string, sets, reps int, weight float64) domain.ExerciseEntry {
		return domain.ExerciseEntry{Name: name, Sets: sets, Reps: reps, Weight: weight}
	}
	return []domain.WorkoutDraft{
		{
			Name: "Upper Body",
			Exercises: []domain.ExerciseEntry{
				ex("Barbell Bench Press", 4, 8, 60),
				ex("Overhead Press", 3, 8, 35),
				ex("Lat Pulldown", 3, 10, 50),
				ex("Barbell Row", 3, 8, 50),
				ex("Barbell Curl", 3, 12, 20),
				ex("Tricep Pushdown", 3, 12, 20),
			},
		},
		{
			Name: "Lower Body",
			Exercises: []domain.ExerciseEntry{
				ex("Barbell Squat", 4, 6, 80),
				ex("Deadlift", 3, 5, 100),
				ex("Leg Press", 3, 10, 120),
				ex("Walking Lunge", 3, 12, 10),
				ex("Leg Extension", 3, 12, 40),
				ex("Lying Leg Curl", 3, 12, 30),
				ex("Calf Raise", 4, 15, 40),
			},
		},
		{
			Name: "Full Body - Beginner",
			Exercises: []domain.ExerciseEntry{
				ex("Goblet Squat", 3, 10, 16),
				ex("Push Up", 3, 10, 0),
				ex("Seated Cable Row", 3, 10, 35),
				ex("Dumbbell Shoulder Press", 3, 10, 12),
				ex("Plank", 3, 1, 0),
			},
		},
	}
}

// seedTemplates adds the starter templates the user doesn't already have by name
func seedTemplates(cmd *cobra.Command, repo *service.WorkoutRepository) (int, error) {
	existing := make(map[string]bool)
	for _, t := range repo.Templates() {
		existing[strings.ToLower(t.Name)] = true
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	created := 0
	for _, draft := range starterTemplates() {
		if existing[strings.ToLower(draft.Name)] {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", yellow("skip"), draft.Name)
			continue
		}
		if _, err := repo.SaveAsTemplate(cmd.Context(), draft); err != nil {
			return created, fmt.Errorf("failed to create template %s: %w", draft.Name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d exercises)\n", green("created"), draft.Name, len(draft.Exercises))
		created++
	}
	return created, nil
}

var seedTemplatesCmd = &cobra.Command{
	Use:   "seed-templates",
	Short: "Add the starter workout templates to a user's library",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		repo, err := e.repository(cmd.Context())
		if err != nil {
			return err
		}
		created, err := seedTemplates(cmd, repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d template(s) created\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedTemplatesCmd)
}
