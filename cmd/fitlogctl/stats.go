package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/spf13/cobra"
)

var statsRange string

// printStats writes the summary and the current-vs-previous comparison
func printStats(w io.Writer, workouts []*domain.WorkoutRecord, now time.Time, days int, loc *time.Location) {
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	s := service.Summarize(workouts)
	fmt.Fprintf(w, "%s\n", yellow("Summary"))
	fmt.Fprintf(w, "  %s %d\n", cyan("Workouts:"), s.TotalWorkouts)
	fmt.Fprintf(w, "  %s %d\n", cyan("Exercises:"), s.TotalExercises)
	fmt.Fprintf(w, "  %s %d\n", cyan("Sets:"), s.TotalSets)
	fmt.Fprintf(w, "  %s %.1f kg\n", cyan("Volume:"), s.TotalVolume)
	fmt.Fprintf(w, "  %s %.1f\n\n", cyan("Avg sets/workout:"), s.AverageSetsPerWorkout)

	cmp := service.ComparePeriods(workouts, now, days, loc)
	fmt.Fprintf(w, "%s %s → %s\n", yellow(fmt.Sprintf("Last %d days", days)), cmp.From, cmp.To)
	peak := maxVolume(cmp.Series)
	for _, d := range cmp.Series {
		bar := strings.Repeat("█", barWidth(d.Volume, peak))
		fmt.Fprintf(w, "  %s %s %-20s %8.1f kg\n", d.Weekday, d.Date, bar, d.Volume)
	}

	change := func(m domain.MetricChange) string {
		txt := fmt.Sprintf("%+.1f%%", m.PercentChange)
		if m.PercentChange < 0 {
			return red(txt)
		}
		return green(txt)
	}
	fmt.Fprintf(w, "\n  %s %.1f kg (%s)\n", cyan("Volume:"), cmp.Volume.Current, change(cmp.Volume))
	fmt.Fprintf(w, "  %s %.0f (%s)\n", cyan("Sets:"), cmp.Sets.Current, change(cmp.Sets))
	fmt.Fprintf(w, "  %s %.0f (%s)\n", cyan("Workouts:"), cmp.Workouts.Current, change(cmp.Workouts))
}

func maxVolume(series []domain.DayComparison) float64 {
	var peak float64
	for _, d := range series {
		if d.Volume > peak {
			peak = d.Volume
		}
	}
	return peak
}

func barWidth(v, peak float64) int {
	if peak <= 0 {
		return 0
	}
	return int(v / peak * 20)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's workout summary and period comparison",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := service.RangeDays(statsRange)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()

		repo, err := e.repository(cmd.Context())
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), repo.Workouts(), time.Now(), days, e.cfg.Location())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsRange, "range", "r", "week", "week, month or quarter")
}
