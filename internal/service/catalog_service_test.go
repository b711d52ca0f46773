package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog answers searches with the term as the only exercise name. When gate
// is set, each search blocks until a value is sent on it.
type stubCatalog struct {
	gate    chan struct{}
	started chan struct{}
	err     error
}

func (s *stubCatalog) Search(ctx context.Context, query domain.ExerciseQuery) ([]domain.ExerciseSummary, error) {
	if s.gate != nil {
		s.started <- struct{}{}
		<-s.gate
	}
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ExerciseSummary{{ID: 1, Name: query.Term}}, nil
}

func (s *stubCatalog) MuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.MuscleGroup{{ID: 4, Name: "Pectoralis major"}}, nil
}

func (s *stubCatalog) Exercise(ctx context.Context, id int) (*domain.ExerciseSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id != 1 {
		return nil, domain.ErrExerciseNotFound
	}
	return &domain.ExerciseSummary{ID: 1, Name: "Bench Press"}, nil
}

func TestCatalogService_SupersededSearchIsStale(t *testing.T) {
	catalog := &stubCatalog{gate: make(chan struct{}), started: make(chan struct{})}
	svc := NewCatalogService(catalog)
	ctx := context.Background()

	type result struct {
		items []domain.ExerciseSummary
		err   error
	}
	first := make(chan result, 1)
	go func() {
		items, err := svc.Search(ctx, "u1", domain.ExerciseQuery{Term: "ben"})
		first <- result{items, err}
	}()
	<-catalog.started

	second := make(chan result, 1)
	go func() {
		items, err := svc.Search(ctx, "u1", domain.ExerciseQuery{Term: "bench"})
		second <- result{items, err}
	}()
	<-catalog.started

	// release both; only the latest token may answer
	catalog.gate <- struct{}{}
	catalog.gate <- struct{}{}

	r1, r2 := <-first, <-second
	results := []result{r1, r2}

	var stale, fresh int
	for _, r := range results {
		if r.err != nil {
			assert.ErrorIs(t, r.err, domain.ErrStaleResponse)
			stale++
			continue
		}
		require.Len(t, r.items, 1)
		assert.Equal(t, "bench", r.items[0].Name)
		fresh++
	}
	assert.Equal(t, 1, stale)
	assert.Equal(t, 1, fresh)
}

func TestCatalogService_SearchesArePerUser(t *testing.T) {
	svc := NewCatalogService(&stubCatalog{})
	ctx := context.Background()

	_, err := svc.Search(ctx, "u1", domain.ExerciseQuery{Term: "squat"})
	require.NoError(t, err)
	got, err := svc.Search(ctx, "u2", domain.ExerciseQuery{Term: "row"})
	require.NoError(t, err)
	assert.Equal(t, "row", got[0].Name)
}

func TestCatalogService_Status(t *testing.T) {
	catalog := &stubCatalog{}
	svc := NewCatalogService(catalog)
	ctx := context.Background()

	assert.True(t, svc.Status("u1").Available)

	catalog.err = fmt.Errorf("%w: status 503", domain.ErrCatalogUnavailable)
	_, err := svc.Search(ctx, "u1", domain.ExerciseQuery{Term: "squat"})
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)

	st := svc.Status("u1")
	assert.False(t, st.Available)
	assert.Contains(t, st.LastError, "503")
	assert.True(t, svc.Status("u2").Available)

	catalog.err = nil
	groups, err := svc.MuscleGroups(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.True(t, svc.Status("u1").Available)

	_, err = svc.Exercise(ctx, "u1", 42)
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	assert.True(t, svc.Status("u1").Available)

	catalog.err = domain.ErrCatalogUnavailable
	_, _ = svc.Exercise(ctx, "u1", 1)
	assert.False(t, svc.Status("u1").Available)
	svc.Forget("u1")
	assert.True(t, svc.Status("u1").Available)
}
