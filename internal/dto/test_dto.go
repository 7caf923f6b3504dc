package dto

import "time"

// OptionViewDTO is an answer option as shown before submission; it never
// carries correctness.
type OptionViewDTO struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected,omitempty"`
}

// QuestionViewDTO is a question as shown to a test-taker.
type QuestionViewDTO struct {
	ID            uint            `json:"id"`
	Text          string          `json:"text"`
	Hint          *string         `json:"hint,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	Type          string          `json:"question_type"`
	OrderInTest   int             `json:"order_in_test"`
	AnswerOptions []OptionViewDTO `json:"answer_options"`
	StudentAnswer *string         `json:"student_answer,omitempty"`
}

type TestViewDTO struct {
	ID              uint              `json:"id"`
	GroupID         uint              `json:"group_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Opens           *time.Time        `json:"opens,omitempty"`
	DurationMinutes int               `json:"duration_minutes"`
	MaxAttempts     int               `json:"max_attempts"`
	Questions       []QuestionViewDTO `json:"questions"`
}

// DraftTestDTO is a test view pre-filled with a suspended draft.
type DraftTestDTO struct {
	TestViewDTO
	StartTime   time.Time `json:"start_time"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// TestSummaryDTO lists a test together with the caller's progress on it.
type TestSummaryDTO struct {
	ID              uint       `json:"id"`
	GroupID         uint       `json:"group_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Opens           *time.Time `json:"opens,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	MaxAttempts     int        `json:"max_attempts"`
	Continue        bool       `json:"continue"`
	IsCompleted     bool       `json:"is_completed"`
}

// ReviewOptionDTO is an answer option shown after submission, with correctness.
type ReviewOptionDTO struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type ReviewQuestionDTO struct {
	ID            uint              `json:"id"`
	Text          string            `json:"text"`
	Hint          *string           `json:"hint,omitempty"`
	ImageURL      *string           `json:"image_url,omitempty"`
	Type          string            `json:"question_type"`
	Explanation   string            `json:"explanation,omitempty"`
	OrderInTest   int               `json:"order_in_test"`
	AnswerOptions []ReviewOptionDTO `json:"answer_options"`
}

type AnswerReviewDTO struct {
	ID         uint              `json:"id"`
	QuestionID uint              `json:"question_id"`
	Question   ReviewQuestionDTO `json:"question"`
	Answer     string            `json:"answer"`
	IsCorrect  bool              `json:"is_correct"`
	AIFeedback string            `json:"ai_feedback,omitempty"`
}

type TestAttemptDetailDTO struct {
	ID        uint              `json:"id"`
	TestID    uint              `json:"test_id"`
	TestName  string            `json:"test_name,omitempty"`
	UserID    uint              `json:"user_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Score     int               `json:"score"`
	Answers   []AnswerReviewDTO `json:"answers"`
}

type TestAttemptSummaryDTO struct {
	ID        uint      `json:"id"`
	TestID    uint      `json:"test_id"`
	UserID    uint      `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Score     int       `json:"score"`
}

type AnswerFeedbackDTO struct {
	AnswerID   uint   `json:"answer_id"`
	QuestionID uint   `json:"question_id"`
	Feedback   string `json:"feedback"`
}

type AttemptFeedbackDTO struct {
	AttemptID uint                `json:"attempt_id"`
	Answers   []AnswerFeedbackDTO `json:"answers"`
}
