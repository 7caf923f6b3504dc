package dto

import "time"

type CreateOptionDTO struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuestionDTO is used within CreateTestDTO for test authoring.
type CreateQuestionDTO struct {
	Text          string            `json:"text" binding:"required"`
	Hint          *string           `json:"hint"`
	ImageURL      *string           `json:"image_url"`
	Explanation   string            `json:"explanation"`
	Type          string            `json:"question_type" binding:"required,oneof=single multiply writing"`
	OrderInTest   int               `json:"order_in_test" binding:"min=0"`
	AnswerOptions []CreateOptionDTO `json:"answer_options" binding:"required,min=1,dive"`
}

// CreateTestDTO is for staff to create a generic test with all its questions.
type CreateTestDTO struct {
	GroupID         uint                `json:"group_id" binding:"required"`
	Name            string              `json:"name" binding:"required"`
	Description     string              `json:"description,omitempty"`
	Opens           *time.Time          `json:"opens"`
	DurationMinutes int                 `json:"duration_minutes" binding:"min=0"`
	MaxAttempts     int                 `json:"max_attempts" binding:"min=0"`
	Questions       []CreateQuestionDTO `json:"questions" binding:"required,min=1,dive"`
}

type CreateSatQuestionDTO struct {
	CreateQuestionDTO
	Section string `json:"section" binding:"required"`
}

type CreateSatTestDTO struct {
	Name        string                 `json:"name" binding:"required"`
	Description string                 `json:"description,omitempty"`
	Opens       *time.Time             `json:"opens"`
	Due         *time.Time             `json:"due"`
	Questions   []CreateSatQuestionDTO `json:"questions" binding:"required,min=1,dive"`
}

// CreatedDTO is returned by authoring endpoints.
type CreatedDTO struct {
	ID            uint `json:"id"`
	QuestionCount int  `json:"question_count"`
}
