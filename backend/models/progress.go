package models

import (
	"time"

	"gorm.io/gorm"
)

// LessonProgress is the single record kept per (user, lesson). Repeated
// completions and quiz attempts overwrite it, they never duplicate it; the
// composite unique index is what actually enforces that under concurrent
// writes.
type LessonProgress struct {
	gorm.Model
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	QuizScore   *int       `json:"quiz_score,omitempty"` // percentage, latest attempt wins
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }
