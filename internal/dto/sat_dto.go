package dto

import "time"

type SatQuestionViewDTO struct {
	ID            uint            `json:"id"`
	Section       string          `json:"section"`
	Text          string          `json:"text"`
	Hint          *string         `json:"hint,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	Type          string          `json:"question_type"`
	OrderInTest   int             `json:"order_in_test"`
	AnswerOptions []OptionViewDTO `json:"answer_options"`
}

type SatTestViewDTO struct {
	ID           uint                 `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Opens        *time.Time           `json:"opens,omitempty"`
	Due          *time.Time           `json:"due,omitempty"`
	Sections     []string             `json:"sections"`
	SatQuestions []SatQuestionViewDTO `json:"sat_questions"`
}

type SatQuestionReviewDTO struct {
	ID            uint              `json:"id"`
	Section       string            `json:"section"`
	Text          string            `json:"text"`
	Type          string            `json:"question_type"`
	Explanation   string            `json:"explanation,omitempty"`
	OrderInTest   int               `json:"order_in_test"`
	AnswerOptions []ReviewOptionDTO `json:"answer_options"`
	StudentAnswer *string           `json:"student_answer,omitempty"`
	IsCorrect     bool              `json:"is_correct"`
}

type SatTestReviewDTO struct {
	ID           uint                   `json:"id"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	SatQuestions []SatQuestionReviewDTO `json:"sat_questions"`
}

type SatAttemptDTO struct {
	ID         uint      `json:"id"`
	SatTestID  uint      `json:"sat_test_id"`
	UserID     uint      `json:"user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	TotalScore int       `json:"total_score"`
}

// SatAttemptAnswersDTO is the review of one SAT attempt.
type SatAttemptAnswersDTO struct {
	Attempt SatAttemptDTO    `json:"attempt"`
	Scores  map[string]int   `json:"scores"`
	SatTest SatTestReviewDTO `json:"sat_test"`
}

type DeadlineCreateDTO struct {
	SatTestID uint      `json:"sat_test_id" binding:"required"`
	GroupID   uint      `json:"group_id" binding:"required"`
	Opens     time.Time `json:"opens" binding:"required"`
	Due       time.Time `json:"due" binding:"required"`
}

type DeadlineUpdateDTO struct {
	Opens time.Time `json:"opens" binding:"required"`
	Due   time.Time `json:"due" binding:"required"`
}

type DeadlineDTO struct {
	ID        uint      `json:"id"`
	SatTestID uint      `json:"sat_test_id"`
	GroupID   uint      `json:"group_id"`
	Opens     time.Time `json:"opens"`
	Due       time.Time `json:"due"`
}
