package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// generateULID creates a new ULID string, monotonic within the process
func generateULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// WorkoutRepository owns one user's workouts and templates in memory and writes
// every mutation through to the store before returning. When the write fails the
// in-memory collections are left as they were.
type WorkoutRepository struct {
	mu        sync.RWMutex
	userID    string
	store     domain.WorkoutStore
	loc       *time.Location
	loaded    bool
	workouts  []*domain.WorkoutRecord
	templates []*domain.WorkoutRecord

	now   func() time.Time
	newID func() string
}

// OpenWorkoutRepository loads both collections of a user concurrently. Calendar
// dates in generated names use loc (UTC when nil).
func OpenWorkoutRepository(ctx context.Context, store domain.WorkoutStore, userID string, loc *time.Location) (*WorkoutRepository, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := &WorkoutRepository{
		userID: userID,
		store:  store,
		loc:    loc,
		now:    time.Now,
		newID:  generateULID,
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the in-memory collections with what is in storage. Mutations
// wait for it to finish.
func (r *WorkoutRepository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(ctx)
}

func (r *WorkoutRepository) loadLocked(ctx context.Context) error {
	var workouts, templates []*domain.WorkoutRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		workouts, err = r.store.LoadWorkouts(gctx, r.userID)
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = r.store.LoadTemplates(gctx, r.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load workouts for %s: %w", r.userID, err)
	}

	r.workouts = workouts
	r.templates = templates
	r.loaded = true

	logrus.WithFields(logrus.Fields{
		"user_id":   r.userID,
		"workouts":  len(workouts),
		"templates": len(templates),
	}).Debug("workout repository loaded")
	return nil
}

// ensureLoaded reloads released collections before a mutation. Caller holds mu.
func (r *WorkoutRepository) ensureLoaded(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	return r.loadLocked(ctx)
}

// release drops the in-memory collections; the next mutation or Reload reads
// them back from storage
func (r *WorkoutRepository) release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workouts = nil
	r.templates = nil
	r.loaded = false
}

// Loaded reports whether the collections are held in memory
func (r *WorkoutRepository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// UserID returns the owner of this repository
func (r *WorkoutRepository) UserID() string {
	return r.userID
}

// =============================================================================
// Reads
// =============================================================================

// Workouts returns a deep copy of the workout collection in insertion order
func (r *WorkoutRepository) Workouts() []*domain.WorkoutRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.workouts)
}

// Templates returns a deep copy of the template collection
func (r *WorkoutRepository) Templates() []*domain.WorkoutRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.templates)
}

func (r *WorkoutRepository) Get(id string) (*domain.WorkoutRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.workouts, id)
	if i < 0 {
		return nil, domain.ErrWorkoutNotFound
	}
	return r.workouts[i].Clone(), nil
}

func (r *WorkoutRepository) GetTemplate(id string) (*domain.WorkoutRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := indexOf(r.templates, id)
	if i < 0 {
		return nil, domain.ErrTemplateNotFound
	}
	return r.templates[i].Clone(), nil
}

// ByDateRange returns the workouts performed between from and to, both inclusive
func (r *WorkoutRepository) ByDateRange(from, to time.Time) []*domain.WorkoutRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.WorkoutRecord, 0)
	for _, w := range r.workouts {
		if w.Timestamp.Before(from) || w.Timestamp.After(to) {
			continue
		}
		out = append(out, w.Clone())
	}
	return out
}

// =============================================================================
// Workout mutations
// =============================================================================

// Add validates the draft and logs it as a new workout performed now
func (r *WorkoutRepository) Add(ctx context.Context, draft domain.WorkoutDraft) (*domain.WorkoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return r.addLocked(ctx, draft, "add")
}

func (r *WorkoutRepository) addLocked(ctx context.Context, draft domain.WorkoutDraft, op string) (*domain.WorkoutRecord, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	record := &domain.WorkoutRecord{
		ID:        r.newID(),
		UserID:    r.userID,
		Name:      strings.TrimSpace(draft.Name),
		Timestamp: now,
		CreatedAt: now,
		Exercises: domain.CloneExercises(draft.Exercises),
		Notes:     draft.Notes,
	}

	next := appendRecord(r.workouts, record)
	if err := r.persistWorkouts(ctx, op, next); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// Update applies the patch to an existing workout. ID, owner and timestamps are kept.
func (r *WorkoutRepository) Update(ctx context.Context, id string, patch domain.WorkoutPatch) (*domain.WorkoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	i := indexOf(r.workouts, id)
	if i < 0 {
		return nil, domain.ErrWorkoutNotFound
	}

	updated := patch.Apply(r.workouts[i])
	updated.Name = strings.TrimSpace(updated.Name)
	if err := domain.DraftFromRecord(updated).Validate(); err != nil {
		return nil, err
	}

	next := make([]*domain.WorkoutRecord, len(r.workouts))
	copy(next, r.workouts)
	next[i] = updated
	if err := r.persistWorkouts(ctx, "update", next); err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// Delete removes a workout. Deleting an unknown id is a no-op.
func (r *WorkoutRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DeleteMany(ctx, []string{id})
	return err
}

// DeleteMany removes every workout whose id is listed and reports how many went
func (r *WorkoutRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return 0, err
	}

	next := make([]*domain.WorkoutRecord, 0, len(r.workouts))
	for _, w := range r.workouts {
		if _, ok := drop[w.ID]; ok {
			continue
		}
		next = append(next, w)
	}

	removed := len(r.workouts) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := r.persistWorkouts(ctx, "delete", next); err != nil {
		return 0, err
	}
	return removed, nil
}

// Duplicate copies a workout under a new id, performed now, named "<name> (Copy)"
func (r *WorkoutRepository) Duplicate(ctx context.Context, id string) (*domain.WorkoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	i := indexOf(r.workouts, id)
	if i < 0 {
		return nil, domain.ErrWorkoutNotFound
	}

	now := r.now()
	dup := r.workouts[i].Clone()
	dup.ID = r.newID()
	dup.Name = domain.DuplicateName(dup.Name)
	dup.Timestamp = now
	dup.CreatedAt = now

	next := appendRecord(r.workouts, dup)
	if err := r.persistWorkouts(ctx, "duplicate", next); err != nil {
		return nil, err
	}
	return dup.Clone(), nil
}

// =============================================================================
// Template mutations
// =============================================================================

// SaveAsTemplate stores the draft as a reusable template
func (r *WorkoutRepository) SaveAsTemplate(ctx context.Context, draft domain.WorkoutDraft) (*domain.WorkoutRecord, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	template := &domain.WorkoutRecord{
		ID:         r.newID(),
		UserID:     r.userID,
		Name:       strings.TrimSpace(draft.Name),
		CreatedAt:  r.now(),
		Exercises:  domain.CloneExercises(draft.Exercises),
		Notes:      draft.Notes,
		IsTemplate: true,
	}

	next := appendRecord(r.templates, template)
	if err := r.persistTemplates(ctx, "save_template", next); err != nil {
		return nil, err
	}
	return template.Clone(), nil
}

// InstantiateFromTemplate logs a new workout from a template, named
// "<template name> - <YYYY-MM-DD>" with the date taken in the repository's location
func (r *WorkoutRepository) InstantiateFromTemplate(ctx context.Context, templateID string) (*domain.WorkoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	i := indexOf(r.templates, templateID)
	if i < 0 {
		return nil, domain.ErrTemplateNotFound
	}
	template := r.templates[i]

	draft := domain.DraftFromRecord(template)
	draft.Name = domain.InstantiatedName(template.Name, r.now().In(r.loc))
	return r.addLocked(ctx, draft, "instantiate")
}

// DeleteTemplate removes a template. Deleting an unknown id is a no-op.
func (r *WorkoutRepository) DeleteTemplate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(ctx); err != nil {
		return err
	}

	i := indexOf(r.templates, id)
	if i < 0 {
		return nil
	}

	next := make([]*domain.WorkoutRecord, 0, len(r.templates)-1)
	next = append(next, r.templates[:i]...)
	next = append(next, r.templates[i+1:]...)
	return r.persistTemplates(ctx, "delete_template", next)
}

// =============================================================================
// Persistence
// =============================================================================

// persistWorkouts writes next and only then swaps it in. Caller holds mu.
func (r *WorkoutRepository) persistWorkouts(ctx context.Context, op string, next []*domain.WorkoutRecord) error {
	err := r.store.SaveWorkouts(ctx, r.userID, next)
	telemetry.RecordWorkoutMutation(ctx, op, err)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": r.userID, "op": op}).WithError(err).Error("failed to persist workouts")
		return fmt.Errorf("failed to save workouts: %w", err)
	}
	r.workouts = next
	return nil
}

// persistTemplates writes next and only then swaps it in. Caller holds mu.
func (r *WorkoutRepository) persistTemplates(ctx context.Context, op string, next []*domain.WorkoutRecord) error {
	err := r.store.SaveTemplates(ctx, r.userID, next)
	telemetry.RecordWorkoutMutation(ctx, op, err)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": r.userID, "op": op}).WithError(err).Error("failed to persist templates")
		return fmt.Errorf("failed to save templates: %w", err)
	}
	r.templates = next
	return nil
}

func indexOf(records []*domain.WorkoutRecord, id string) int {
	for i, w := range records {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func appendRecord(records []*domain.WorkoutRecord, record *domain.WorkoutRecord) []*domain.WorkoutRecord {
	next := make([]*domain.WorkoutRecord, len(records), len(records)+1)
	copy(next, records)
	return append(next, record)
}

func cloneAll(records []*domain.WorkoutRecord) []*domain.WorkoutRecord {
	out := make([]*domain.WorkoutRecord, len(records))
	for i, w := range records {
		out[i] = w.Clone()
	}
	return out
}
