package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// CatalogService fronts the exercise catalog for the exercise browser. Each search
// takes a sequence token per user; a response that comes back after a newer search
// was issued is discarded with domain.ErrStaleResponse.
type CatalogService struct {
	catalog domain.ExerciseCatalog
	now     func() time.Time

	mu     sync.Mutex
	issued map[string]uint64
	status map[string]domain.CatalogStatus
}

func NewCatalogService(catalog domain.ExerciseCatalog) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		now:     time.Now,
		issued:  make(map[string]uint64),
		status:  make(map[string]domain.CatalogStatus),
	}
}

func (s *CatalogService) nextToken(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[userID]++
	return s.issued[userID]
}

func (s *CatalogService) isLatest(userID string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued[userID] == token
}

// Search runs a catalog search for the user, discarding superseded responses
func (s *CatalogService) Search(ctx context.Context, userID string, query domain.ExerciseQuery) ([]domain.ExerciseSummary, error) {
	token := s.nextToken(userID)

	results, err := s.catalog.Search(ctx, query)

	if !s.isLatest(userID, token) {
		telemetry.RecordCatalogRequest(ctx, "search", "stale")
		logrus.WithFields(logrus.Fields{"user_id": userID, "token": token}).Debug("discarding stale catalog response")
		return nil, domain.ErrStaleResponse
	}

	s.record(ctx, userID, "search", err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MuscleGroups lists the muscle group filter options
func (s *CatalogService) MuscleGroups(ctx context.Context, userID string) ([]domain.MuscleGroup, error) {
	groups, err := s.catalog.MuscleGroups(ctx)
	s.record(ctx, userID, "muscles", err)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// Exercise fetches one exercise's details
func (s *CatalogService) Exercise(ctx context.Context, userID string, id int) (*domain.ExerciseSummary, error) {
	exercise, err := s.catalog.Exercise(ctx, id)
	if errors.Is(err, domain.ErrExerciseNotFound) {
		s.record(ctx, userID, "exercise", nil)
		return nil, err
	}
	s.record(ctx, userID, "exercise", err)
	if err != nil {
		return nil, err
	}
	return exercise, nil
}

// Status reports the banner state. A user who never browsed sees the catalog as available.
func (s *CatalogService) Status(userID string) domain.CatalogStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[userID]
	if !ok {
		return domain.CatalogStatus{Available: true}
	}
	return st
}

// record stores the outcome of a completed call. Cancelled calls leave the banner alone.
func (s *CatalogService) record(ctx context.Context, userID, op string, err error) {
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && !errors.Is(err, domain.ErrCatalogUnavailable) {
		return
	}

	st := domain.CatalogStatus{Available: err == nil, CheckedAt: s.now()}
	if err != nil {
		st.LastError = err.Error()
		telemetry.RecordCatalogRequest(ctx, op, "error")
		logrus.WithFields(logrus.Fields{"user_id": userID, "op": op}).WithError(err).Warn("exercise catalog call failed")
	} else {
		telemetry.RecordCatalogRequest(ctx, op, "ok")
	}

	s.mu.Lock()
	s.status[userID] = st
	s.mu.Unlock()
}

// Forget clears the user's banner state, called at logout. Sequence tokens
// survive so a search still in flight stays stale.
func (s *CatalogService) Forget(userID string) {
	s.mu.Lock()
	delete(s.status, userID)
	s.mu.Unlock()
}
