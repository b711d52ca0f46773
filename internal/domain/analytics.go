package domain

import "time"

// WorkoutSummary holds the headline numbers of the dashboard
type WorkoutSummary struct {
	TotalWorkouts         int     `json:"total_workouts"`
	TotalExercises        int     `json:"total_exercises"`
	TotalSets             int     `json:"total_sets"`
	TotalVolume           float64 `json:"total_volume"` // kg
	AverageSetsPerWorkout float64 `json:"average_sets_per_workout"`
}

// WorkoutTotals is the per-workout line shown on history cards
type WorkoutTotals struct {
	TotalSets   int     `json:"total_sets"`
	TotalVolume float64 `json:"total_volume"`
}

// DayBucket aggregates the workouts performed on one calendar day
type DayBucket struct {
	Date         string    `json:"date"`    // YYYY-MM-DD
	Weekday      string    `json:"weekday"` // Mon, Tue...
	Start        time.Time `json:"start"`
	Volume       float64   `json:"volume"`
	TotalSets    int       `json:"total_sets"`
	WorkoutCount int       `json:"workout_count"`
}

// DayComparison pairs a day of the current period with the same offset in the previous one
type DayComparison struct {
	DayBucket
	PreviousDate     string  `json:"previous_date"`
	PreviousVolume   float64 `json:"previous_volume"`
	PreviousSets     int     `json:"previous_sets"`
	PreviousWorkouts int     `json:"previous_workouts"`
	VolumeChange     float64 `json:"volume_change"` // %
	SetsChange       float64 `json:"sets_change"`   // %
}

// MetricChange compares one metric across two periods
type MetricChange struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	PercentChange float64 `json:"percent_change"`
}

// PeriodComparison is the current-vs-previous view of the progress page
type PeriodComparison struct {
	Days     int             `json:"days"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Series   []DayComparison `json:"series"`
	Volume   MetricChange    `json:"volume"`
	Sets     MetricChange    `json:"sets"`
	Workouts MetricChange    `json:"workouts"`
}

// HistoryFilter narrows the workout history list
type HistoryFilter struct {
	Query string     // matches workout or exercise names, case-insensitive
	Date  string     // exact day, YYYY-MM-DD
	From  *time.Time // inclusive
	To    *time.Time // inclusive
}

// HistoryEntry is a workout with its computed totals
type HistoryEntry struct {
	Workout *WorkoutRecord `json:"workout"`
	Totals  WorkoutTotals  `json:"totals"`
}

// HistoryDay groups the workouts of one calendar day
type HistoryDay struct {
	Date     string         `json:"date"`
	Workouts []HistoryEntry `json:"workouts"`
}

// Dashboard bundles everything the dashboard view renders in one response
type Dashboard struct {
	Summary    WorkoutSummary   `json:"summary"`
	LastWeek   []DayBucket      `json:"last_week"`
	Comparison PeriodComparison `json:"comparison"`
}
