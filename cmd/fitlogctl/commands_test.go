package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fatih/color"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/repository"
	"github.com/mansoorceksport/fitlog/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func newTestRepository(t *testing.T) *service.WorkoutRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := repository.NewKVWorkoutStore(repository.NewRedisKeyValueStore(client))
	repo, err := service.OpenWorkoutRepository(context.Background(), store, "u1", time.UTC)
	require.NoError(t, err)
	return repo
}

func TestStarterTemplatesAreValid(t *testing.T) {
	for _, draft := range starterTemplates() {
		assert.NoError(t, draft.Validate(), draft.Name)
	}
}

func TestSeedTemplates_SkipsExistingNames(t *testing.T) {
	repo := newTestRepository(t)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	_, err := repo.SaveAsTemplate(context.Background(), domain.WorkoutDraft{
		Name:      "upper body",
		Exercises: []domain.ExerciseEntry{{Name: "Bench", Sets: 1, Reps: 1, Weight: 1}},
	})
	require.NoError(t, err)

	created, err := seedTemplates(cmd, repo)
	require.NoError(t, err)
	assert.Equal(t, len(starterTemplates())-1, created)
	assert.Contains(t, out.String(), "skip Upper Body")
	assert.Len(t, repo.Templates(), len(starterTemplates()))

	created, err = seedTemplates(cmd, repo)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestPrintStats(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	workouts := []*domain.WorkoutRecord{{
		ID:        "w1",
		Name:      "Legs",
		Timestamp: now.Add(-time.Hour),
		Exercises: []domain.ExerciseEntry{{Name: "Squat", Sets: 5, Reps: 5, Weight: 100}},
	}}

	var out bytes.Buffer
	printStats(&out, workouts, now, 7, time.UTC)

	got := out.String()
	assert.Contains(t, got, "Workouts: 1")
	assert.Contains(t, got, "Volume: 2500.0 kg")
	assert.Contains(t, got, "Last 7 days 2025-01-04")
	assert.Contains(t, got, "2025-01-10")
}

func TestPrintExercises(t *testing.T) {
	var out bytes.Buffer
	printExercises(&out, []domain.ExerciseSummary{{ID: 73, Name: "Bench Press", Description: "<p>Lie on the <b>bench</b></p>"}})
	assert.Equal(t, "#73 Bench Press\n   Lie on the bench\n", out.String())

	out.Reset()
	printExercises(&out, nil)
	assert.Equal(t, "no exercises found\n", out.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
