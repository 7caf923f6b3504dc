package model

import "github.com/lshigami/testhall/internal/scoring"

// ScoringQuestion converts a question with its preloaded options into the
// record graded by the scoring package.
func (q Question) ScoringQuestion() scoring.Question {
	out := scoring.Question{ID: q.ID, Type: scoring.QuestionType(q.Type)}
	for _, o := range q.AnswerOptions {
		out.Options = append(out.Options, scoring.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

func (q SatQuestion) ScoringQuestion() scoring.Question {
	out := scoring.Question{ID: q.ID, Type: scoring.QuestionType(q.Type), Section: q.Section}
	for _, o := range q.AnswerOptions {
		out.Options = append(out.Options, scoring.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

func (t Test) ScoringQuestions() []scoring.Question {
	out := make([]scoring.Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		out = append(out, q.ScoringQuestion())
	}
	return out
}

func (t SatTest) ScoringQuestions() []scoring.Question {
	out := make([]scoring.Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		out = append(out, q.ScoringQuestion())
	}
	return out
}

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&Test{},
		&Question{},
		&AnswerOption{},
		&TestAttempt{},
		&Answer{},
		&SuspendAnswer{},
		&SatTest{},
		&SatQuestion{},
		&SatAnswerOption{},
		&SatAttempt{},
		&SatAnswer{},
		&Deadline{},
		&GroupMember{},
		&TestLock{},
	}
}
