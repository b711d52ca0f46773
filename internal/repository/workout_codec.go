package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
)

const untitledWorkout = "Untitled workout"

// flexNumber accepts a JSON number or a numeric string ("3", "12.5")
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = flexNumber(f)
	return nil
}

type storedExercise struct {
	Name   string     `json:"name"`
	Sets   flexNumber `json:"sets"`
	Reps   flexNumber `json:"reps"`
	Weight flexNumber `json:"weight"`
	Notes  string     `json:"notes"`
}

// storedRecord is the lenient shape read back from storage. Older clients wrote
// camelCase keys and numeric ids.
type storedRecord struct {
	ID              json.RawMessage  `json:"id"`
	UserID          string           `json:"user_id"`
	LegacyUserID    json.RawMessage  `json:"userId"`
	Name            string           `json:"name"`
	Timestamp       *time.Time       `json:"timestamp"`
	CreatedAt       *time.Time       `json:"created_at"`
	LegacyCreatedAt *time.Time       `json:"createdAt"`
	Exercises       []storedExercise `json:"exercises"`
	Notes           string           `json:"notes"`
}

// encodeWorkouts serializes a collection as a JSON array
func encodeWorkouts(records []*domain.WorkoutRecord) ([]byte, error) {
	if records == nil {
		records = []*domain.WorkoutRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workouts: %w", err)
	}
	return data, nil
}

// decodeWorkouts reads a stored collection and fails closed: a payload that is not
// a JSON array yields an empty collection and unusable records are dropped.
func decodeWorkouts(data []byte, userID string, templates bool) []*domain.WorkoutRecord {
	log := logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"templates": templates,
	})

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []*domain.WorkoutRecord{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		log.WithError(err).Warn("stored collection is not a JSON array, starting empty")
		return []*domain.WorkoutRecord{}
	}

	out := make([]*domain.WorkoutRecord, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	dropped := 0
	for i, item := range items {
		rec, reason := decodeRecord(item, userID, templates)
		if rec == nil {
			log.WithField("index", i).Debugf("dropping stored record: %s", reason)
			dropped++
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			log.WithField("index", i).Debugf("dropping stored record: duplicate id %s", rec.ID)
			dropped++
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}

	if dropped > 0 {
		log.WithField("count", dropped).Warn("dropped unusable stored records")
	}
	return out
}

func decodeRecord(item json.RawMessage, userID string, template bool) (*domain.WorkoutRecord, string) {
	var raw storedRecord
	if err := json.Unmarshal(item, &raw); err != nil {
		return nil, err.Error()
	}

	id, ok := normalizeID(raw.ID)
	if !ok {
		return nil, "missing id"
	}

	owner := raw.UserID
	if owner == "" {
		owner, _ = normalizeID(raw.LegacyUserID)
	}
	if owner != "" && owner != userID {
		return nil, "owned by another user"
	}

	rec := &domain.WorkoutRecord{
		ID:         id,
		UserID:     userID,
		Name:       strings.TrimSpace(raw.Name),
		Notes:      raw.Notes,
		IsTemplate: template,
	}
	if rec.Name == "" {
		rec.Name = untitledWorkout
	}

	for _, ex := range raw.Exercises {
		entry := domain.ExerciseEntry{
			Name:   strings.TrimSpace(ex.Name),
			Sets:   int(ex.Sets),
			Reps:   int(ex.Reps),
			Weight: float64(ex.Weight),
			Notes:  ex.Notes,
		}
		if entry.Name == "" || entry.Sets <= 0 || entry.Reps <= 0 || entry.Weight < 0 {
			continue
		}
		rec.Exercises = append(rec.Exercises, entry)
	}

	switch {
	case raw.CreatedAt != nil:
		rec.CreatedAt = *raw.CreatedAt
	case raw.LegacyCreatedAt != nil:
		rec.CreatedAt = *raw.LegacyCreatedAt
	}

	if template {
		if rec.CreatedAt.IsZero() && raw.Timestamp != nil {
			rec.CreatedAt = *raw.Timestamp
		}
		if rec.Exercises == nil {
			rec.Exercises = []domain.ExerciseEntry{}
		}
		return rec, ""
	}

	if len(rec.Exercises) == 0 {
		return nil, "no valid exercises"
	}
	if raw.Timestamp != nil {
		rec.Timestamp = *raw.Timestamp
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = rec.CreatedAt
	}
	if rec.Timestamp.IsZero() {
		return nil, "no timestamp"
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.Timestamp
	}
	return rec, ""
}

// normalizeID accepts a JSON string or number and returns it as a string
func normalizeID(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), true
	}
	return n.String(), true
}
