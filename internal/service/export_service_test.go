package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFiles struct {
	key         string
	contentType string
	data        []byte
}

func (r *recordingFiles) Upload(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	r.key, r.contentType, r.data = key, contentType, file
	return "http://files.local/fitlog-exports/" + key, nil
}

func exportFixture() []*domain.WorkoutRecord {
	at := time.Date(2025, 1, 9, 18, 30, 0, 0, time.UTC)
	w := workoutAt("01HQ", at,
		domain.ExerciseEntry{Name: "Bench", Sets: 3, Reps: 10, Weight: 20},
		domain.ExerciseEntry{Name: "Dips", Sets: 4, Reps: 8, Weight: 15, Notes: "slow, controlled"},
	)
	w.Name = "Push"
	return []*domain.WorkoutRecord{w}
}

func newTestExportService(files domain.FileRepository) *ExportService {
	svc := NewExportService(files)
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportService_CSV(t *testing.T) {
	svc := newTestExportService(nil)

	file, err := svc.Export(context.Background(), exportFixture(), domain.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "workouts-export-2025-02-01.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per exercise")
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"01HQ", "Push", "2025-01-09T18:30:00Z", "Bench", "3", "10", "20", "600", ""}, rows[1])
	assert.Equal(t, []string{"01HQ", "Push", "2025-01-09T18:30:00Z", "Dips", "4", "8", "15", "480", "slow, controlled"}, rows[2])
}

func TestExportService_JSON(t *testing.T) {
	svc := newTestExportService(nil)

	file, err := svc.Export(context.Background(), exportFixture(), domain.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, "workouts-export-2025-02-01.json", file.Filename)
	assert.Contains(t, string(file.Data), "\n  {\n    \"id\": \"01HQ\"")

	var decoded []*domain.WorkoutRecord
	require.NoError(t, json.Unmarshal(file.Data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, exportFixture()[0].Exercises, decoded[0].Exercises)

	empty, err := svc.Export(context.Background(), nil, domain.ExportJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.Data))
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, domain.ExportJSON, f)

	f, err = ParseExportFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, domain.ExportCSV, f)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportService_Publish(t *testing.T) {
	ctx := context.Background()
	file := &domain.ExportFile{Filename: "workouts-export-2025-02-01.csv", ContentType: "text/csv", Data: []byte("x")}

	_, err := newTestExportService(nil).Publish(ctx, "u1", file)
	assert.ErrorIs(t, err, domain.ErrFileStorageDisabled)

	files := &recordingFiles{}
	url, err := newTestExportService(files).Publish(ctx, "u1", file)
	require.NoError(t, err)
	assert.Equal(t, "exports/u1/workouts-export-2025-02-01.csv", files.key)
	assert.Equal(t, "text/csv", files.contentType)
	assert.Equal(t, "http://files.local/fitlog-exports/exports/u1/workouts-export-2025-02-01.csv", url)
}

func TestSelectWorkouts(t *testing.T) {
	at := time.Date(2025, 1, 9, 18, 30, 0, 0, time.UTC)
	squat := domain.ExerciseEntry{Name: "Squat", Sets: 3, Reps: 5, Weight: 100}
	all := []*domain.WorkoutRecord{workoutAt("a", at, squat), workoutAt("b", at, squat), workoutAt("c", at, squat)}

	got, err := SelectWorkouts(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = SelectWorkouts(all, []string{"c", "a", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID, "collection order is kept")
	assert.Equal(t, "c", got[1].ID)

	_, err = SelectWorkouts(all, []string{"missing"})
	assert.ErrorIs(t, err, domain.ErrWorkoutNotFound)

	file, err := newTestExportService(nil).Export(context.Background(), got[:1], domain.ExportCSV)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
