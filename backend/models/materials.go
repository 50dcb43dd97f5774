package models

import "gorm.io/gorm"

type Material struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Type        string `gorm:"not null" json:"type"` // pdf, video, link, document
	URL         string `gorm:"not null" json:"url"`
	Category    string `json:"category"`
	CourseID    *uint  `json:"course_id,omitempty"`
}
