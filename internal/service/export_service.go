package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
	"github.com/sirupsen/logrus"
)

var csvHeader = []string{"workout_id", "workout_name", "timestamp", "exercise", "sets", "reps", "weight", "volume", "notes"}

// ExportService renders workouts for download and optionally publishes them
type ExportService struct {
	files domain.FileRepository // nil when object storage is not configured
	now   func() time.Time
}

func NewExportService(files domain.FileRepository) *ExportService {
	return &ExportService{files: files, now: time.Now}
}

// ParseExportFormat accepts "json" or "csv"; empty means json
func ParseExportFormat(s string) (domain.ExportFormat, error) {
	switch domain.ExportFormat(s) {
	case "", domain.ExportJSON:
		return domain.ExportJSON, nil
	case domain.ExportCSV:
		return domain.ExportCSV, nil
	default:
		return "", domain.NewValidationError("format", fmt.Sprintf("unsupported export format %q", s))
	}
}

// SelectWorkouts keeps the workouts whose id is listed, in collection order.
// No ids selects everything; ids that match nothing are ErrWorkoutNotFound.
func SelectWorkouts(workouts []*domain.WorkoutRecord, ids []string) ([]*domain.WorkoutRecord, error) {
	if len(ids) == 0 {
		return workouts, nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	selected := make([]*domain.WorkoutRecord, 0, len(want))
	for _, w := range workouts {
		if _, ok := want[w.ID]; ok {
			selected = append(selected, w)
		}
	}
	if len(selected) == 0 {
		return nil, domain.ErrWorkoutNotFound
	}
	return selected, nil
}

// Export renders workouts as workouts-export-<YYYY-MM-DD>.json|csv
func (s *ExportService) Export(ctx context.Context, workouts []*domain.WorkoutRecord, format domain.ExportFormat) (*domain.ExportFile, error) {
	filename := fmt.Sprintf("workouts-export-%s.%s", s.now().Format(dayLayout), format)

	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case domain.ExportJSON:
		data, err = exportJSON(workouts)
		contentType = "application/json"
	case domain.ExportCSV:
		data, err = exportCSV(workouts)
		contentType = "text/csv"
	default:
		return nil, domain.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	telemetry.RecordExport(ctx, string(format))
	return &domain.ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

// Publish uploads a rendered export to exports/<user>/<filename> and returns its URL
func (s *ExportService) Publish(ctx context.Context, userID string, file *domain.ExportFile) (string, error) {
	if s.files == nil {
		return "", domain.ErrFileStorageDisabled
	}

	key := fmt.Sprintf("exports/%s/%s", userID, file.Filename)
	url, err := s.files.Upload(ctx, file.Data, key, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to publish export: %w", err)
	}

	logrus.WithFields(logrus.Fields{"user_id": userID, "key": key, "bytes": len(file.Data)}).Info("export published")
	return url, nil
}

func exportJSON(workouts []*domain.WorkoutRecord) ([]byte, error) {
	if workouts == nil {
		workouts = []*domain.WorkoutRecord{}
	}
	data, err := json.MarshalIndent(workouts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}

// exportCSV writes one row per exercise
func exportCSV(workouts []*domain.WorkoutRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, workout := range workouts {
		ts := workout.Timestamp.UTC().Format(time.RFC3339)
		for _, ex := range workout.Exercises {
			row := []string{
				workout.ID,
				workout.Name,
				ts,
				ex.Name,
				strconv.Itoa(ex.Sets),
				strconv.Itoa(ex.Reps),
				strconv.FormatFloat(ex.Weight, 'f', -1, 64),
				strconv.FormatFloat(ex.Volume(), 'f', -1, 64),
				ex.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv export: %w", err)
	}
	return buf.Bytes(), nil
}
