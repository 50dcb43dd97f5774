package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Avatar       string `json:"avatar,omitempty"`
	Role         string `gorm:"default:user" json:"role"` // user, admin
	Points       int    `gorm:"default:0" json:"points"`
}

// RankedUser is a user annotated with their position in the points ranking.
// Rank is computed on read, never stored.
type RankedUser struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}
