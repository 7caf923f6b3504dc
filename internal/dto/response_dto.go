package dto

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// SubmitResultDTO is returned after a generic test submission. TimeTaken is
// in seconds.
type SubmitResultDTO struct {
	AttemptID uint  `json:"attempt_id"`
	Score     int   `json:"score"`
	TimeTaken int64 `json:"timeTaken"`
	Overtime  bool  `json:"overtime"`
}

// SatSubmitResultDTO carries per-section scores plus a "totalScore" entry.
type SatSubmitResultDTO struct {
	AttemptID uint           `json:"attempt_id"`
	Scores    map[string]int `json:"scores"`
}
