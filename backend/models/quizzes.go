package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	LessonID     uint       `gorm:"not null;uniqueIndex" json:"lesson_id"` // one quiz per lesson
	Title        string     `gorm:"not null" json:"title"`
	PassingScore int        `gorm:"default:70" json:"passing_score"` // percentage
	PointsReward int        `gorm:"default:100" json:"points_reward"`
	Questions    []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	gorm.Model
	QuizID        uint           `gorm:"not null;index" json:"quiz_id"`
	Text          string         `gorm:"not null" json:"text"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options"` // array of 2-4 strings
	CorrectOption int            `json:"-"`                         // never serialized to quiz takers
	Explanation   string         `json:"explanation,omitempty"`
	OrderIndex    int            `gorm:"not null;default:0" json:"order_index"`
}
