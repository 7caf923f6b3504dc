package model

import (
	"time"
)

// Answer is one persisted response of a submitted attempt. Value holds the
// raw submitted text: an option id for choice questions, free text otherwise.
type Answer struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TestAttemptID uint      `json:"test_attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID    uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	Question      Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	Value         string    `json:"answer" gorm:"type:text;not null"`
	AIFeedback    string    `json:"ai_feedback,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
