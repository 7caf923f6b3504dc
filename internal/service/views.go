package service

import (
	"sort"

	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/scoring"
)

// Views built here are shown before submission and must never expose
// option correctness or explanations.

// hidesOptions reports whether a question's options must stay out of the
// taker view. The only option of a writing question is its canonical answer.
func hidesOptions(qType string) bool {
	return scoring.QuestionType(qType) == scoring.QuestionWriting
}

func optionViews(qType string, options []model.AnswerOption) []dto.OptionViewDTO {
	if hidesOptions(qType) {
		return []dto.OptionViewDTO{}
	}
	out := make([]dto.OptionViewDTO, 0, len(options))
	for _, o := range options {
		out = append(out, dto.OptionViewDTO{ID: o.ID, Text: o.Text})
	}
	return out
}

func satOptionViews(qType string, options []model.SatAnswerOption) []dto.OptionViewDTO {
	if hidesOptions(qType) {
		return []dto.OptionViewDTO{}
	}
	out := make([]dto.OptionViewDTO, 0, len(options))
	for _, o := range options {
		out = append(out, dto.OptionViewDTO{ID: o.ID, Text: o.Text})
	}
	return out
}

func buildTestView(test *model.Test) dto.TestViewDTO {
	view := dto.TestViewDTO{
		ID:              test.ID,
		GroupID:         test.GroupID,
		Name:            test.Name,
		Description:     test.Description,
		Opens:           test.Opens,
		DurationMinutes: test.DurationMinutes,
		MaxAttempts:     test.MaxAttempts,
	}
	view.Questions = make([]dto.QuestionViewDTO, 0, len(test.Questions))
	for _, q := range test.Questions {
		view.Questions = append(view.Questions, dto.QuestionViewDTO{
			ID:            q.ID,
			Text:          q.Text,
			Hint:          q.Hint,
			ImageURL:      q.ImageURL,
			Type:          q.Type,
			OrderInTest:   q.OrderInTest,
			AnswerOptions: optionViews(q.Type, q.AnswerOptions),
		})
	}
	return view
}

func buildSatTestView(test *model.SatTest) dto.SatTestViewDTO {
	view := dto.SatTestViewDTO{
		ID:          test.ID,
		Name:        test.Name,
		Description: test.Description,
		Opens:       test.Opens,
		Due:         test.Due,
	}
	seen := make(map[string]bool)
	view.SatQuestions = make([]dto.SatQuestionViewDTO, 0, len(test.Questions))
	for _, q := range test.Questions {
		if !seen[q.Section] {
			seen[q.Section] = true
			view.Sections = append(view.Sections, q.Section)
		}
		view.SatQuestions = append(view.SatQuestions, dto.SatQuestionViewDTO{
			ID:            q.ID,
			Section:       q.Section,
			Text:          q.Text,
			Hint:          q.Hint,
			ImageURL:      q.ImageURL,
			Type:          q.Type,
			OrderInTest:   q.OrderInTest,
			AnswerOptions: satOptionViews(q.Type, q.AnswerOptions),
		})
	}
	sort.Strings(view.Sections)
	return view
}

// Review views are shown after submission or to staff and include
// correctness and explanations.

func reviewOptions(options []model.AnswerOption) []dto.ReviewOptionDTO {
	out := make([]dto.ReviewOptionDTO, 0, len(options))
	for _, o := range options {
		out = append(out, dto.ReviewOptionDTO{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}

func buildReviewQuestion(q model.Question) dto.ReviewQuestionDTO {
	return dto.ReviewQuestionDTO{
		ID:            q.ID,
		Text:          q.Text,
		Hint:          q.Hint,
		ImageURL:      q.ImageURL,
		Type:          q.Type,
		Explanation:   q.Explanation,
		OrderInTest:   q.OrderInTest,
		AnswerOptions: reviewOptions(q.AnswerOptions),
	}
}

func buildSatReviewQuestion(q model.SatQuestion, answer *string) dto.SatQuestionReviewDTO {
	out := dto.SatQuestionReviewDTO{
		ID:            q.ID,
		Section:       q.Section,
		Text:          q.Text,
		Type:          q.Type,
		Explanation:   q.Explanation,
		OrderInTest:   q.OrderInTest,
		AnswerOptions: make([]dto.ReviewOptionDTO, 0, len(q.AnswerOptions)),
		StudentAnswer: answer,
	}
	for _, o := range q.AnswerOptions {
		out.AnswerOptions = append(out.AnswerOptions, dto.ReviewOptionDTO{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	if answer != nil {
		out.IsCorrect = scoring.Grade(q.ScoringQuestion(), *answer) == scoring.Correct
	}
	return out
}

func toSubmitted(items []dto.AnswerItemDTO) []scoring.SubmittedAnswer {
	out := make([]scoring.SubmittedAnswer, 0, len(items))
	for _, item := range items {
		out = append(out, scoring.SubmittedAnswer{QuestionID: item.QuestionID, Value: item.Answer.String()})
	}
	return out
}
