package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
)

const dayLayout = "2006-01-02"

// Chart ranges offered by the progress page
var rangeDays = map[string]int{
	"week":    7,
	"month":   28,
	"quarter": 84,
}

// RangeDays resolves a named range (week, month, quarter) to a number of days
func RangeDays(name string) (int, error) {
	days, ok := rangeDays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, domain.NewValidationError("range", fmt.Sprintf("unknown range %q, want week, month or quarter", name))
	}
	return days, nil
}

// Summarize computes the dashboard headline numbers
func Summarize(workouts []*domain.WorkoutRecord) domain.WorkoutSummary {
	var s domain.WorkoutSummary
	s.TotalWorkouts = len(workouts)
	for _, w := range workouts {
		s.TotalExercises += len(w.Exercises)
		t := Totals(w)
		s.TotalSets += t.TotalSets
		s.TotalVolume += t.TotalVolume
	}
	if s.TotalWorkouts > 0 {
		s.AverageSetsPerWorkout = float64(s.TotalSets) / float64(s.TotalWorkouts)
	}
	return s
}

// Totals sums the sets and volume of one workout
func Totals(w *domain.WorkoutRecord) domain.WorkoutTotals {
	var t domain.WorkoutTotals
	for _, ex := range w.Exercises {
		t.TotalSets += ex.Sets
		t.TotalVolume += ex.Volume()
	}
	return t
}

// PercentageChange returns (current-previous)/previous*100, or 0 when previous is 0
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DailyBuckets returns one bucket per calendar day in loc, oldest first, ending on
// end's day. Days without workouts are present with zero values.
func DailyBuckets(workouts []*domain.WorkoutRecord, end time.Time, days int, loc *time.Location) []domain.DayBucket {
	if days <= 0 {
		return []domain.DayBucket{}
	}
	if loc == nil {
		loc = time.UTC
	}

	first := startOfDay(end, loc).AddDate(0, 0, -(days - 1))
	buckets := make([]domain.DayBucket, days)
	index := make(map[string]int, days)
	for i := range buckets {
		day := first.AddDate(0, 0, i)
		key := day.Format(dayLayout)
		buckets[i] = domain.DayBucket{
			Date:    key,
			Weekday: day.Weekday().String()[:3],
			Start:   day,
		}
		index[key] = i
	}

	for _, w := range workouts {
		i, ok := index[w.Timestamp.In(loc).Format(dayLayout)]
		if !ok {
			continue
		}
		t := Totals(w)
		buckets[i].Volume += t.TotalVolume
		buckets[i].TotalSets += t.TotalSets
		buckets[i].WorkoutCount++
	}
	return buckets
}

// ComparePeriods compares the `days` days ending on end's day with the `days` days before
func ComparePeriods(workouts []*domain.WorkoutRecord, end time.Time, days int, loc *time.Location) domain.PeriodComparison {
	if loc == nil {
		loc = time.UTC
	}
	current := DailyBuckets(workouts, end, days, loc)
	previous := DailyBuckets(workouts, startOfDay(end, loc).AddDate(0, 0, -days), days, loc)

	cmp := domain.PeriodComparison{
		Days:   len(current),
		Series: make([]domain.DayComparison, len(current)),
	}
	if len(current) == 0 {
		return cmp
	}
	cmp.From = current[0].Date
	cmp.To = current[len(current)-1].Date

	var curWorkouts, prevWorkouts int
	for i, cur := range current {
		prev := previous[i]
		cmp.Series[i] = domain.DayComparison{
			DayBucket:        cur,
			PreviousDate:     prev.Date,
			PreviousVolume:   prev.Volume,
			PreviousSets:     prev.TotalSets,
			PreviousWorkouts: prev.WorkoutCount,
			VolumeChange:     PercentageChange(cur.Volume, prev.Volume),
			SetsChange:       PercentageChange(float64(cur.TotalSets), float64(prev.TotalSets)),
		}
		cmp.Volume.Current += cur.Volume
		cmp.Volume.Previous += prev.Volume
		cmp.Sets.Current += float64(cur.TotalSets)
		cmp.Sets.Previous += float64(prev.TotalSets)
		curWorkouts += cur.WorkoutCount
		prevWorkouts += prev.WorkoutCount
	}
	cmp.Workouts.Current = float64(curWorkouts)
	cmp.Workouts.Previous = float64(prevWorkouts)

	for _, m := range []*domain.MetricChange{&cmp.Volume, &cmp.Sets, &cmp.Workouts} {
		m.PercentChange = PercentageChange(m.Current, m.Previous)
	}
	return cmp
}

// FilterHistory returns the workouts matching filter, newest first. The query
// matches the workout name or any exercise name, case-insensitively.
func FilterHistory(workouts []*domain.WorkoutRecord, filter domain.HistoryFilter, loc *time.Location) []*domain.WorkoutRecord {
	if loc == nil {
		loc = time.UTC
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]*domain.WorkoutRecord, 0, len(workouts))
	for _, w := range workouts {
		if query != "" && !matchesQuery(w, query) {
			continue
		}
		if filter.Date != "" && w.Timestamp.In(loc).Format(dayLayout) != filter.Date {
			continue
		}
		if filter.From != nil && w.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && w.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func matchesQuery(w *domain.WorkoutRecord, query string) bool {
	if strings.Contains(strings.ToLower(w.Name), query) {
		return true
	}
	for _, ex := range w.Exercises {
		if strings.Contains(strings.ToLower(ex.Name), query) {
			return true
		}
	}
	return false
}

// GroupByDay groups workouts by calendar day in loc, newest day first
func GroupByDay(workouts []*domain.WorkoutRecord, loc *time.Location) []domain.HistoryDay {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]*domain.WorkoutRecord, len(workouts))
	copy(sorted, workouts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	days := make([]domain.HistoryDay, 0)
	for _, w := range sorted {
		key := w.Timestamp.In(loc).Format(dayLayout)
		if len(days) == 0 || days[len(days)-1].Date != key {
			days = append(days, domain.HistoryDay{Date: key})
		}
		last := &days[len(days)-1]
		last.Workouts = append(last.Workouts, domain.HistoryEntry{Workout: w, Totals: Totals(w)})
	}
	return days
}

// =============================================================================
// AnalyticsService
// =============================================================================

// AnalyticsService runs the aggregator over a user's current workouts
type AnalyticsService struct {
	sessions *WorkoutSessions
	loc      *time.Location
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service computing days in loc
func NewAnalyticsService(sessions *WorkoutSessions, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		sessions: sessions,
		loc:      loc,
		now:      time.Now,
	}
}

func (s *AnalyticsService) snapshot(ctx context.Context, userID string) ([]*domain.WorkoutRecord, error) {
	repo, err := s.sessions.For(ctx, userID)
	if err != nil {
		return nil, err
	}
	return repo.Workouts(), nil
}

func (s *AnalyticsService) Summary(ctx context.Context, userID string) (domain.WorkoutSummary, error) {
	workouts, err := s.snapshot(ctx, userID)
	if err != nil {
		return domain.WorkoutSummary{}, err
	}
	return Summarize(workouts), nil
}

func (s *AnalyticsService) Daily(ctx context.Context, userID string, days int) ([]domain.DayBucket, error) {
	workouts, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DailyBuckets(workouts, s.now(), days, s.loc), nil
}

func (s *AnalyticsService) Comparison(ctx context.Context, userID string, days int) (domain.PeriodComparison, error) {
	workouts, err := s.snapshot(ctx, userID)
	if err != nil {
		return domain.PeriodComparison{}, err
	}
	return ComparePeriods(workouts, s.now(), days, s.loc), nil
}

// History returns the filtered workouts grouped by day
func (s *AnalyticsService) History(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.HistoryDay, error) {
	workouts, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupByDay(FilterHistory(workouts, filter, s.loc), s.loc), nil
}

// Dashboard computes the summary, the last seven days and the weekly comparison
// from one snapshot
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (*domain.Dashboard, error) {
	workouts, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	days := rangeDays["week"]

	return &domain.Dashboard{
		Summary:    Summarize(workouts),
		LastWeek:   DailyBuckets(workouts, now, days, s.loc),
		Comparison: ComparePeriods(workouts, now, days, s.loc),
	}, nil
}

// Location is the time zone days are cut in
func (s *AnalyticsService) Location() *time.Location {
	return s.loc
}
