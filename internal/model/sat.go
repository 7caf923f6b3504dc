package model

import (
	"time"

	"gorm.io/gorm"
)

// SatTest has no owning group; who may take it and when is decided by the
// Deadlines attached to it.
type SatTest struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description,omitempty"`
	Opens       *time.Time     `json:"opens,omitempty"`
	Due         *time.Time     `json:"due,omitempty"`
	Questions   []SatQuestion  `json:"sat_questions,omitempty" gorm:"foreignKey:SatTestID;constraint:OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type SatQuestion struct {
	ID            uint              `gorm:"primarykey" json:"id"`
	SatTestID     uint              `json:"sat_test_id" gorm:"not null;index"`
	Section       string            `json:"section" gorm:"not null;index"`
	Text          string            `json:"text" gorm:"type:text;not null"`
	Hint          *string           `json:"hint,omitempty"`
	ImageURL      *string           `json:"image_url,omitempty"`
	Explanation   string            `json:"-" gorm:"type:text"`
	Type          string            `json:"question_type" gorm:"not null"`
	OrderInTest   int               `json:"order_in_test" gorm:"not null;default:0"`
	AnswerOptions []SatAnswerOption `json:"answer_options,omitempty" gorm:"foreignKey:SatQuestionID;constraint:OnDelete:CASCADE;"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}

type SatAnswerOption struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	SatQuestionID uint      `json:"sat_question_id" gorm:"not null;index"`
	Text          string    `json:"text" gorm:"type:text;not null"`
	IsCorrect     bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SatAttempt struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	SatTestID  uint           `json:"sat_test_id" gorm:"not null;index:idx_sat_attempt_user"`
	SatTest    SatTest        `json:"-" gorm:"foreignKey:SatTestID"`
	UserID     uint           `json:"user_id" gorm:"not null;index:idx_sat_attempt_user"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	TotalScore int            `json:"total_score" gorm:"not null;default:0"`
	Answers    []SatAnswer    `json:"-" gorm:"foreignKey:SatAttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

type SatAnswer struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	SatAttemptID  uint      `json:"sat_attempt_id" gorm:"not null;uniqueIndex:idx_sat_answer_attempt_question"`
	SatQuestionID uint      `json:"sat_question_id" gorm:"not null;uniqueIndex:idx_sat_answer_attempt_question"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	Value         string    `json:"answer" gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"`
}

// Deadline opens a SAT test to one group for a window. Due must be after Opens.
type Deadline struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	SatTestID uint      `json:"sat_test_id" gorm:"not null;uniqueIndex:idx_deadline_test_group"`
	GroupID   uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_deadline_test_group"`
	Opens     time.Time `json:"opens" gorm:"not null"`
	Due       time.Time `json:"due" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
