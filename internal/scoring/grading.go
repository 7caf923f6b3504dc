package scoring

import (
	"strconv"
	"strings"
)

type Verdict int

const (
	Incorrect Verdict = iota
	Correct
)

func (v Verdict) String() string {
	if v == Correct {
		return "correct"
	}
	return "incorrect"
}

// Grade evaluates one submitted value against a question.
//
// For multiply questions a single submitted option id is correct when it
// matches any correct option; selecting the full correct set is not checked.
func Grade(q Question, submitted string) Verdict {
	switch q.Type {
	case QuestionSingle, QuestionMultiply:
		id, ok := ParseOptionID(submitted)
		if !ok {
			return Incorrect
		}
		for _, o := range q.Options {
			if o.IsCorrect && o.ID == id {
				return Correct
			}
		}
		return Incorrect
	case QuestionWriting:
		canonical, ok := CanonicalAnswer(q)
		if !ok {
			return Incorrect
		}
		if normalizeText(submitted) == normalizeText(canonical) {
			return Correct
		}
		return Incorrect
	default:
		return Incorrect
	}
}

// ParseOptionID reads an option identifier sent as a decimal string.
func ParseOptionID(v string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// CanonicalAnswer returns the text of the first correct option, the single
// accepted answer for a writing question.
func CanonicalAnswer(q Question) (string, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Text, true
		}
	}
	return "", false
}

func normalizeText(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
