package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	Title       string   `gorm:"not null" json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	Difficulty  string   `gorm:"default:beginner" json:"difficulty"` // beginner, intermediate, advanced
	Category    string   `json:"category"`
	Modules     []Module `gorm:"constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

type Module struct {
	gorm.Model
	CourseID   uint     `gorm:"not null;index" json:"course_id"`
	Title      string   `gorm:"not null" json:"title"`
	OrderIndex int      `gorm:"not null;default:0" json:"order_index"`
	Lessons    []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

type Lesson struct {
	gorm.Model
	ModuleID    uint   `gorm:"not null;index" json:"module_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	Duration    string `json:"duration"` // "mm:ss"
	OrderIndex  int    `gorm:"not null;default:0" json:"order_index"`
	Quiz        *Quiz  `gorm:"constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
}
