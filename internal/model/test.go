package model

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	GroupID         uint           `json:"group_id" gorm:"not null;index"`
	Name            string         `json:"name" gorm:"not null"`
	Description     string         `json:"description,omitempty"`
	Opens           *time.Time     `json:"opens,omitempty"`
	DurationMinutes int            `json:"duration_minutes"`
	MaxAttempts     int            `json:"max_attempts"` // 0 = unlimited
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE;"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
