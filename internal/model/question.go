package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	TestID        uint           `json:"test_id" gorm:"not null;index"`
	Text          string         `json:"text" gorm:"type:text;not null"`
	Hint          *string        `json:"hint,omitempty"`
	ImageURL      *string        `json:"image_url,omitempty"`
	Explanation   string         `json:"-" gorm:"type:text"`
	Type          string         `json:"question_type" gorm:"not null"` // "single", "multiply", "writing"
	OrderInTest   int            `json:"order_in_test" gorm:"not null;default:0"`
	AnswerOptions []AnswerOption `json:"answer_options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

type AnswerOption struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
