// Package scoring holds the grading rules for tests and SAT tests. It works on
// plain records only, so the rules can be exercised without a database.
package scoring

import "time"

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiply QuestionType = "multiply"
	QuestionWriting  QuestionType = "writing"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingle, QuestionMultiply, QuestionWriting:
		return true
	}
	return false
}

type Option struct {
	ID        uint
	Text      string
	IsCorrect bool
}

type Question struct {
	ID      uint
	Type    QuestionType
	Section string
	Options []Option
}

// SubmittedAnswer is the raw value a test-taker sent for one question: an
// option id for single/multiply questions, free text for writing ones.
type SubmittedAnswer struct {
	QuestionID uint
	Value      string
}

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Policy is the time window and attempt budget that applies to one
// (user, test) pair at the moment of a request.
type Policy struct {
	Opens        *time.Time
	Due          *time.Time
	MaxAttempts  int // 0 means unlimited
	AttemptCount int
}
