package scoring

// DefaultSection collects questions that carry no section label.
const DefaultSection = "default"

// SectionScores counts correct answers per section.
type SectionScores map[string]int

// Total is the sum over all section counters.
func (s SectionScores) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

func sectionOf(q Question) string {
	if q.Section == "" {
		return DefaultSection
	}
	return q.Section
}

// IndexQuestions maps questions by id.
func IndexQuestions(questions []Question) map[uint]Question {
	idx := make(map[uint]Question, len(questions))
	for _, q := range questions {
		idx[q.ID] = q
	}
	return idx
}

// FilterAnswers drops answers for questions outside the index and collapses
// repeated answers to the same question, keeping the last value in the
// position where the question first appeared.
func FilterAnswers(index map[uint]Question, answers []SubmittedAnswer) []SubmittedAnswer {
	out := make([]SubmittedAnswer, 0, len(answers))
	pos := make(map[uint]int, len(answers))
	for _, a := range answers {
		if _, ok := index[a.QuestionID]; !ok {
			continue
		}
		if i, seen := pos[a.QuestionID]; seen {
			out[i].Value = a.Value
			continue
		}
		pos[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out
}

// ComputeSectionScores grades every answer and tallies correct ones under the
// section of their question. Every section present in questions is reported,
// even with zero correct answers. Unknown question ids are ignored.
func ComputeSectionScores(questions []Question, answers []SubmittedAnswer) SectionScores {
	scores := make(SectionScores)
	for _, q := range questions {
		if _, ok := scores[sectionOf(q)]; !ok {
			scores[sectionOf(q)] = 0
		}
	}
	index := IndexQuestions(questions)
	for _, a := range FilterAnswers(index, answers) {
		q := index[a.QuestionID]
		if Grade(q, a.Value) == Correct {
			scores[sectionOf(q)]++
		}
	}
	return scores
}

// ComputeScore is the unsectioned total used by generic tests.
func ComputeScore(questions []Question, answers []SubmittedAnswer) int {
	return ComputeSectionScores(questions, answers).Total()
}
