package model

import (
	"time"

	"gorm.io/gorm"
)

type TestAttempt struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	TestID    uint           `json:"test_id" gorm:"not null;index:idx_test_attempt_user"`
	Test      Test           `json:"test,omitempty" gorm:"foreignKey:TestID"`
	UserID    uint           `json:"user_id" gorm:"not null;index:idx_test_attempt_user"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Score     int            `json:"score" gorm:"not null;default:0"`
	Answers   []Answer       `json:"answers,omitempty" gorm:"foreignKey:TestAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
