package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/rs/zerolog/log"
)

const feedbackTimeout = 60 * time.Second

// FeedbackService attaches AI feedback to the writing answers of an attempt.
// Feedback is advisory and never changes a score.
type FeedbackService interface {
	GenerateWritingFeedback(actor Actor, attemptID uint) (*dto.AttemptFeedbackDTO, error)
}

type feedbackService struct {
	testAttemptRepo repository.TestAttemptRepository
	answerRepo      repository.AnswerRepository
	llm             GeminiLLMService
}

func NewFeedbackService(
	testAttemptRepo repository.TestAttemptRepository,
	answerRepo repository.AnswerRepository,
	llm GeminiLLMService,
) FeedbackService {
	return &feedbackService{testAttemptRepo: testAttemptRepo, answerRepo: answerRepo, llm: llm}
}

type feedbackResult struct {
	answerID   uint
	questionID uint
	feedback   string
	err        error
}

func (s *feedbackService) GenerateWritingFeedback(actor Actor, attemptID uint) (*dto.AttemptFeedbackDTO, error) {
	if !s.llm.Enabled() {
		return nil, validationError(ErrFeedbackDisabled)
	}
	attempt, err := s.testAttemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		return nil, lookupError(ErrAttemptNotFound, "load attempt", err)
	}
	if !actor.canSee(attempt.UserID) {
		return nil, forbiddenError(ErrNotOwner)
	}

	ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan feedbackResult, len(attempt.Answers))
	for i := range attempt.Answers {
		ans := &attempt.Answers[i]
		if scoring.QuestionType(ans.Question.Type) != scoring.QuestionWriting {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			canonical, _ := scoring.CanonicalAnswer(ans.Question.ScoringQuestion())
			feedback, err := s.llm.WritingFeedback(ctx, &ans.Question, canonical, ans.Value)
			results <- feedbackResult{answerID: ans.ID, questionID: ans.QuestionID, feedback: feedback, err: err}
		}()
	}
	wg.Wait()
	close(results)

	resp := &dto.AttemptFeedbackDTO{AttemptID: attempt.ID, Answers: []dto.AnswerFeedbackDTO{}}
	var failures int
	for res := range results {
		if res.err != nil {
			failures++
			log.Error().Err(res.err).Uint("answerID", res.answerID).Msg("GenerateWritingFeedback: LLM call failed")
			continue
		}
		if err := s.answerRepo.UpdateFeedback(res.answerID, res.feedback); err != nil {
			log.Error().Err(err).Uint("answerID", res.answerID).Msg("GenerateWritingFeedback: Failed to store feedback")
			return nil, persistenceError("store feedback", err)
		}
		resp.Answers = append(resp.Answers, dto.AnswerFeedbackDTO{
			AnswerID:   res.answerID,
			QuestionID: res.questionID,
			Feedback:   res.feedback,
		})
	}
	if failures > 0 && len(resp.Answers) == 0 {
		return nil, persistenceError("generate feedback", errors.New("every feedback request failed"))
	}

	sort.Slice(resp.Answers, func(i, j int) bool { return resp.Answers[i].AnswerID < resp.Answers[j].AnswerID })
	log.Info().Uint("attemptID", attemptID).Int("answers", len(resp.Answers)).Int("failures", failures).Msg("GenerateWritingFeedback: Feedback stored")
	return resp, nil
}
