package dto

// AnswerItemDTO is one answer of a generic test submission or suspend.
type AnswerItemDTO struct {
	QuestionID uint        `json:"question_id" binding:"required"`
	Answer     AnswerValue `json:"answer"`
}

// TestSubmitDTO is the body of POST /tests/{test_id}/submit.
type TestSubmitDTO struct {
	Answers   []AnswerItemDTO `json:"answers" binding:"required,dive"`
	StartTime string          `json:"startTime" binding:"required"`
}

// TestSuspendDTO is the body of POST /tests/{test_id}/suspend.
type TestSuspendDTO struct {
	Answers   []AnswerItemDTO `json:"answers" binding:"required,dive"`
	StartTime string          `json:"startTime" binding:"required"`
}

// SatAnswerItemDTO is one answer inside a section of a SAT submission.
type SatAnswerItemDTO struct {
	QuestionID uint        `json:"question_id"`
	OptionID   AnswerValue `json:"option_id"`
}

// SatTestSubmitDTO is the body of POST /satTests/{id}/submit, answers keyed by section.
type SatTestSubmitDTO struct {
	Answers map[string][]SatAnswerItemDTO `json:"answers" binding:"required"`
}
