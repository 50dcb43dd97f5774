package services

import (
	"context"
	"time"

	"github.com/GabrielGB-web/academiadetreinamento/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressStore persists per-user lesson completion state. Both write calls
// are atomic upserts keyed on (user_id, lesson_id); the store-level unique
// constraint is the race guard for concurrent writes from the same user,
// not any client-side check.
type ProgressStore interface {
	ListByUser(ctx context.Context, userID uint) ([]models.LessonProgress, error)
	MarkCompleted(ctx context.Context, userID, lessonID uint, at time.Time) error
	SaveQuizScore(ctx context.Context, userID, lessonID uint, score int, at time.Time) error
}

// GormProgressStore implements ProgressStore on Postgres via GORM's
// ON CONFLICT clause.
type GormProgressStore struct {
	DB *gorm.DB
}

func NewGormProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

var progressConflict = []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}}

func (s *GormProgressStore) ListByUser(ctx context.Context, userID uint) ([]models.LessonProgress, error) {
	var records []models.LessonProgress
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, &TransientError{Err: err}
	}
	return records, nil
}

func (s *GormProgressStore) MarkCompleted(ctx context.Context, userID, lessonID uint, at time.Time) error {
	rec := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: &at,
	}
	// Does not touch quiz_score: completing a lesson again must not erase a
	// recorded quiz result.
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   progressConflict,
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return &TransientError{Err: err}
	}
	return nil
}

func (s *GormProgressStore) SaveQuizScore(ctx context.Context, userID, lessonID uint, score int, at time.Time) error {
	rec := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		QuizScore:   &score,
		CompletedAt: &at,
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   progressConflict,
		DoUpdates: clause.AssignmentColumns([]string{"completed", "quiz_score", "completed_at", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return &TransientError{Err: err}
	}
	return nil
}

// Tracker caches the current user's progress records for a session so that
// completion lookups stay in memory. The cache is updated only after the
// store confirms a write; a failed write leaves it untouched. Reads may serve
// stale data until Load is called again.
//
// A Tracker serves one user and is driven by one request or quiz session at a
// time; it does no internal locking.
type Tracker struct {
	store   ProgressStore
	userID  uint
	records map[uint]models.LessonProgress // keyed by lesson ID
}

func NewTracker(store ProgressStore, userID uint) *Tracker {
	return &Tracker{
		store:   store,
		userID:  userID,
		records: make(map[uint]models.LessonProgress),
	}
}

// Load refreshes the cache from the store. For an anonymous tracker it
// resolves to an empty set without error so read paths degrade gracefully.
func (t *Tracker) Load(ctx context.Context) error {
	t.records = make(map[uint]models.LessonProgress)
	if t.userID == 0 {
		return nil
	}

	records, err := t.store.ListByUser(ctx, t.userID)
	if err != nil {
		return err
	}
	for _, rec := range records {
		t.records[rec.LessonID] = rec
	}
	return nil
}

// MarkCompleted upserts the (user, lesson) record with completed=true and a
// fresh timestamp. Calling it twice leaves exactly one record with the later
// timestamp.
func (t *Tracker) MarkCompleted(ctx context.Context, lessonID uint) error {
	if t.userID == 0 {
		return ErrUnauthenticated
	}

	now := time.Now().UTC()
	if err := t.store.MarkCompleted(ctx, t.userID, lessonID, now); err != nil {
		return err
	}

	rec := t.records[lessonID]
	rec.UserID = t.userID
	rec.LessonID = lessonID
	rec.Completed = true
	rec.CompletedAt = &now
	t.records[lessonID] = rec
	return nil
}

// SaveQuizScore records a quiz attempt. The latest attempt always wins; there
// is no best-score retention.
func (t *Tracker) SaveQuizScore(ctx context.Context, lessonID uint, score int) error {
	if t.userID == 0 {
		return ErrUnauthenticated
	}

	now := time.Now().UTC()
	if err := t.store.SaveQuizScore(ctx, t.userID, lessonID, score, now); err != nil {
		return err
	}

	rec := t.records[lessonID]
	rec.UserID = t.userID
	rec.LessonID = lessonID
	rec.Completed = true
	rec.QuizScore = &score
	rec.CompletedAt = &now
	t.records[lessonID] = rec
	return nil
}

// IsCompleted is a pure lookup against the cache; it never touches the store.
func (t *Tracker) IsCompleted(lessonID uint) bool {
	rec, ok := t.records[lessonID]
	return ok && rec.Completed
}

// QuizScore returns the cached score for a lesson, if one was recorded.
func (t *Tracker) QuizScore(lessonID uint) (int, bool) {
	rec, ok := t.records[lessonID]
	if !ok || rec.QuizScore == nil {
		return 0, false
	}
	return *rec.QuizScore, true
}

// Records returns a snapshot of the cached progress set.
func (t *Tracker) Records() []models.LessonProgress {
	out := make([]models.LessonProgress, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	return out
}
