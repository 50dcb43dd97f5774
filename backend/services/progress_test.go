package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/GabrielGB-web/academiadetreinamento/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProgressStore mirrors the column-level upsert semantics of the real
// store: marking a lesson completed never touches an existing quiz score.
type memProgressStore struct {
	records map[string]models.LessonProgress
	fail    error
	writes  int
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{records: make(map[string]models.LessonProgress)}
}

func progressKey(userID, lessonID uint) string {
	return fmt.Sprintf("%d/%d", userID, lessonID)
}

func (s *memProgressStore) ListByUser(_ context.Context, userID uint) ([]models.LessonProgress, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	var out []models.LessonProgress
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memProgressStore) MarkCompleted(_ context.Context, userID, lessonID uint, at time.Time) error {
	if s.fail != nil {
		return s.fail
	}
	s.writes++
	k := progressKey(userID, lessonID)
	rec, ok := s.records[k]
	if !ok {
		rec = models.LessonProgress{UserID: userID, LessonID: lessonID}
	}
	rec.Completed = true
	rec.CompletedAt = &at
	s.records[k] = rec
	return nil
}

func (s *memProgressStore) SaveQuizScore(_ context.Context, userID, lessonID uint, score int, at time.Time) error {
	if s.fail != nil {
		return s.fail
	}
	s.writes++
	k := progressKey(userID, lessonID)
	rec, ok := s.records[k]
	if !ok {
		rec = models.LessonProgress{UserID: userID, LessonID: lessonID}
	}
	rec.Completed = true
	rec.QuizScore = &score
	rec.CompletedAt = &at
	s.records[k] = rec
	return nil
}

func TestTrackerMarkCompletedIdempotent(t *testing.T) {
	store := newMemProgressStore()
	tracker := NewTracker(store, 7)
	ctx := context.Background()

	require.NoError(t, tracker.MarkCompleted(ctx, 42))
	require.NoError(t, tracker.MarkCompleted(ctx, 42))

	assert.Len(t, store.records, 1)
	assert.True(t, tracker.IsCompleted(42))

	rec := store.records[progressKey(7, 42)]
	assert.True(t, rec.Completed)
	require.NotNil(t, rec.CompletedAt)
}

func TestTrackerQuizScoreLatestWins(t *testing.T) {
	store := newMemProgressStore()
	tracker := NewTracker(store, 7)
	ctx := context.Background()

	require.NoError(t, tracker.SaveQuizScore(ctx, 42, 40))
	require.NoError(t, tracker.SaveQuizScore(ctx, 42, 90))

	score, ok := tracker.QuizScore(42)
	require.True(t, ok)
	assert.Equal(t, 90, score)

	rec := store.records[progressKey(7, 42)]
	require.NotNil(t, rec.QuizScore)
	assert.Equal(t, 90, *rec.QuizScore)
	assert.Len(t, store.records, 1)
}

func TestTrackerCompletionKeepsQuizScore(t *testing.T) {
	store := newMemProgressStore()
	tracker := NewTracker(store, 7)
	ctx := context.Background()

	require.NoError(t, tracker.SaveQuizScore(ctx, 42, 85))
	require.NoError(t, tracker.MarkCompleted(ctx, 42))

	rec := store.records[progressKey(7, 42)]
	require.NotNil(t, rec.QuizScore)
	assert.Equal(t, 85, *rec.QuizScore)
}

func TestTrackerAnonymous(t *testing.T) {
	store := newMemProgressStore()
	tracker := NewTracker(store, 0)
	ctx := context.Background()

	require.NoError(t, tracker.Load(ctx))
	assert.Empty(t, tracker.Records())

	err := tracker.MarkCompleted(ctx, 42)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	err = tracker.SaveQuizScore(ctx, 42, 50)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.Zero(t, store.writes)
}

func TestTrackerFailedWriteLeavesCacheUntouched(t *testing.T) {
	store := newMemProgressStore()
	tracker := NewTracker(store, 7)
	ctx := context.Background()

	store.fail = &TransientError{Err: errors.New("connection reset")}
	err := tracker.MarkCompleted(ctx, 42)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, tracker.IsCompleted(42))

	store.fail = nil
	require.NoError(t, tracker.MarkCompleted(ctx, 42))
	assert.True(t, tracker.IsCompleted(42))
}

func TestTrackerLoadRefreshesCache(t *testing.T) {
	store := newMemProgressStore()
	ctx := context.Background()

	writer := NewTracker(store, 7)
	require.NoError(t, writer.MarkCompleted(ctx, 42))
	require.NoError(t, writer.SaveQuizScore(ctx, 43, 80))

	reader := NewTracker(store, 7)
	assert.False(t, reader.IsCompleted(42))

	require.NoError(t, reader.Load(ctx))
	assert.True(t, reader.IsCompleted(42))
	score, ok := reader.QuizScore(43)
	require.True(t, ok)
	assert.Equal(t, 80, score)
	assert.Len(t, reader.Records(), 2)
}
