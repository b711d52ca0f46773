package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/infrastructure/wger"
	"github.com/spf13/cobra"
)

var (
	exerciseSearch  string
	exerciseMuscle  string
	exerciseMuscles bool
)

const descriptionWidth = 72

func printExercises(w io.Writer, exercises []domain.ExerciseSummary) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	if len(exercises) == 0 {
		fmt.Fprintln(w, "no exercises found")
		return
	}
	for _, e := range exercises {
		fmt.Fprintf(w, "%s %s\n", cyan(fmt.Sprintf("#%d", e.ID)), yellow(e.Name))
		if desc := truncate(e.PlainDescription(), descriptionWidth); desc != "" {
			fmt.Fprintf(w, "   %s\n", desc)
		}
	}
}

func printMuscles(w io.Writer, groups []domain.MuscleGroup) {
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, g := range groups {
		name := g.Name
		if g.NameEN != "" {
			name = fmt.Sprintf("%s (%s)", g.NameEN, g.Name)
		}
		fmt.Fprintf(w, "%s %s\n", cyan(fmt.Sprintf("%3d", g.ID)), name)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var exercisesCmd = &cobra.Command{
	Use:   "exercises",
	Short: "Search the wger exercise catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := wger.NewClient(wger.Config{
			BaseURL:  cfg.Catalog.BaseURL,
			Language: cfg.Catalog.Language,
			Limit:    cfg.Catalog.Limit,
			Timeout:  cfg.Catalog.Timeout,
		})

		if exerciseMuscles {
			groups, err := client.MuscleGroups(cmd.Context())
			if err != nil {
				return err
			}
			printMuscles(cmd.OutOrStdout(), groups)
			return nil
		}

		exercises, err := client.Search(cmd.Context(), domain.ExerciseQuery{
			Term:          exerciseSearch,
			MuscleGroupID: exerciseMuscle,
		})
		if err != nil {
			return err
		}
		printExercises(cmd.OutOrStdout(), exercises)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exercisesCmd)
	exercisesCmd.Flags().StringVarP(&exerciseSearch, "search", "s", "", "name filter")
	exercisesCmd.Flags().StringVarP(&exerciseMuscle, "muscle", "m", "", "muscle group id")
	exercisesCmd.Flags().BoolVar(&exerciseMuscles, "muscles", false, "list muscle groups instead")
}
