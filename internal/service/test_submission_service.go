package service

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/event"
	"github.com/lshigami/testhall/internal/metrics"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TestSubmissionService records graded attempts of generic tests.
type TestSubmissionService interface {
	SubmitTest(actor Actor, testID uint, req dto.TestSubmitDTO) (*dto.SubmitResultDTO, error)
	GetTestAttemptDetails(actor Actor, attemptID uint) (*dto.TestAttemptDetailDTO, error)
	GetUserAttemptsForTest(actor Actor, testID uint) ([]dto.TestAttemptSummaryDTO, error)
}

type testSubmissionService struct {
	testRepo        repository.TestRepository
	testAttemptRepo repository.TestAttemptRepository
	answerRepo      repository.AnswerRepository
	suspendRepo     repository.SuspendRepository
	lockRepo        repository.LockRepository
	publisher       event.Publisher
	clock           Clock
	db              *gorm.DB // Used for transactions within service methods
}

func NewTestSubmissionService(
	testRepo repository.TestRepository,
	testAttemptRepo repository.TestAttemptRepository,
	answerRepo repository.AnswerRepository,
	suspendRepo repository.SuspendRepository,
	lockRepo repository.LockRepository,
	publisher event.Publisher,
	clock Clock,
	db *gorm.DB,
) TestSubmissionService {
	return &testSubmissionService{
		testRepo:        testRepo,
		testAttemptRepo: testAttemptRepo,
		answerRepo:      answerRepo,
		suspendRepo:     suspendRepo,
		lockRepo:        lockRepo,
		publisher:       publisher,
		clock:           clock,
		db:              db,
	}
}

// SubmitTest grades and records one attempt. The attempt count check, the
// attempt insert and the removal of the suspended draft happen in a single
// transaction holding the (user, test) lock, so nothing is written when any
// step fails.
func (s *testSubmissionService) SubmitTest(actor Actor, testID uint, req dto.TestSubmitDTO) (*dto.SubmitResultDTO, error) {
	timer := time.Now()
	result, err := s.submit(actor, testID, req)
	metrics.Submissions.WithLabelValues(metrics.PipelineTest, metrics.Outcome(err)).Inc()
	metrics.SubmissionDuration.WithLabelValues(metrics.PipelineTest).Observe(time.Since(timer).Seconds())
	if err != nil {
		return nil, err
	}

	evt := event.SubmissionEvent{
		TestID:      testID,
		AttemptID:   result.AttemptID,
		UserID:      actor.UserID,
		Score:       result.Score,
		SubmittedAt: s.clock(),
	}
	if pubErr := s.publisher.PublishSubmission(context.Background(), event.RoutingTestSubmitted, evt); pubErr != nil {
		log.Warn().Err(pubErr).Uint("attemptID", result.AttemptID).Msg("SubmitTest: Failed to publish submission event")
	}
	return result, nil
}

func (s *testSubmissionService) submit(actor Actor, testID uint, req dto.TestSubmitDTO) (*dto.SubmitResultDTO, error) {
	if len(req.Answers) == 0 {
		return nil, validationError(ErrEmptyAnswers)
	}
	startTime, err := ParseStartTime(req.StartTime)
	if err != nil {
		return nil, validationError(err)
	}

	var result dto.SubmitResultDTO
	err = s.db.Transaction(func(tx *gorm.DB) error {
		test, err := s.testRepo.WithTx(tx).FindByIDWithQuestions(testID)
		if err != nil {
			return lookupError(ErrTestNotFound, "load test", err)
		}
		if err := s.lockRepo.WithTx(tx).Acquire(model.LockKindTest, testID, actor.UserID); err != nil {
			return persistenceError("lock user test", err)
		}

		attemptRepo := s.testAttemptRepo.WithTx(tx)
		count, err := attemptRepo.CountByTestAndUser(testID, actor.UserID)
		if err != nil {
			return persistenceError("count attempts", err)
		}
		now := s.clock()
		decision := scoring.CheckEligibility(scoring.Policy{
			Opens:        test.Opens,
			MaxAttempts:  test.MaxAttempts,
			AttemptCount: int(count),
		}, actor.Role, now)
		if !decision.Allowed {
			metrics.EligibilityDenials.WithLabelValues(metrics.PipelineTest, string(decision.Reason)).Inc()
			log.Info().Uint("testID", testID).Uint("userID", actor.UserID).Str("reason", string(decision.Reason)).Msg("SubmitTest: Submission denied")
			return policyDenied(decision.Reason)
		}

		attempt := model.TestAttempt{
			TestID:    testID,
			UserID:    actor.UserID,
			StartTime: startTime,
			EndTime:   now,
			Score:     0,
		}
		if err := attemptRepo.Create(&attempt); err != nil {
			return persistenceError("create attempt", err)
		}

		questions := test.ScoringQuestions()
		index := scoring.IndexQuestions(questions)
		accepted := scoring.FilterAnswers(index, toSubmitted(req.Answers))
		if skipped := len(req.Answers) - len(accepted); skipped > 0 {
			log.Warn().Uint("testID", testID).Int("skipped", skipped).Msg("SubmitTest: Answers for unknown or repeated questions were skipped")
		}

		answers := make([]model.Answer, 0, len(accepted))
		for _, a := range accepted {
			answers = append(answers, model.Answer{
				TestAttemptID: attempt.ID,
				QuestionID:    a.QuestionID,
				UserID:        actor.UserID,
				Value:         a.Value,
			})
		}
		if err := s.answerRepo.WithTx(tx).CreateBatch(answers); err != nil {
			return persistenceError("create answers", err)
		}

		score := scoring.ComputeScore(questions, accepted)
		if err := attemptRepo.UpdateScore(attempt.ID, score); err != nil {
			return persistenceError("update score", err)
		}
		if err := s.suspendRepo.WithTx(tx).DeleteByUserAndTest(actor.UserID, testID); err != nil {
			return persistenceError("clear suspended answers", err)
		}

		elapsed := now.Sub(startTime)
		if elapsed < 0 {
			elapsed = 0
		}
		result = dto.SubmitResultDTO{
			AttemptID: attempt.ID,
			Score:     score,
			TimeTaken: int64(elapsed / time.Second),
			Overtime:  scoring.Overtime(startTime, now, test.DurationMinutes),
		}
		return nil
	})
	if err != nil {
		appErr := asAppError("submit test", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(appErr.Err).Uint("testID", testID).Uint("userID", actor.UserID).Msg("SubmitTest: Transaction rolled back")
		}
		return nil, appErr
	}

	log.Info().Uint("testID", testID).Uint("userID", actor.UserID).Uint("attemptID", result.AttemptID).Int("score", result.Score).Msg("SubmitTest: Attempt recorded")
	return &result, nil
}

// GetTestAttemptDetails returns an attempt with every answer graded against
// its question. Only the owner and staff may read it.
func (s *testSubmissionService) GetTestAttemptDetails(actor Actor, attemptID uint) (*dto.TestAttemptDetailDTO, error) {
	attempt, err := s.testAttemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		appErr := lookupError(ErrAttemptNotFound, "load attempt", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("GetTestAttemptDetails: Failed to find test attempt by ID.")
		}
		return nil, appErr
	}
	if !actor.canSee(attempt.UserID) {
		return nil, forbiddenError(ErrNotOwner)
	}

	sort.SliceStable(attempt.Answers, func(i, j int) bool {
		qi, qj := attempt.Answers[i].Question, attempt.Answers[j].Question
		if qi.OrderInTest != qj.OrderInTest {
			return qi.OrderInTest < qj.OrderInTest
		}
		return qi.ID < qj.ID
	})

	resp := dto.TestAttemptDetailDTO{
		ID:        attempt.ID,
		TestID:    attempt.TestID,
		TestName:  attempt.Test.Name,
		UserID:    attempt.UserID,
		StartTime: attempt.StartTime,
		EndTime:   attempt.EndTime,
		Score:     attempt.Score,
	}

	resp.Answers = make([]dto.AnswerReviewDTO, 0, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		resp.Answers = append(resp.Answers, dto.AnswerReviewDTO{
			ID:         ans.ID,
			QuestionID: ans.QuestionID,
			Question:   buildReviewQuestion(ans.Question),
			Answer:     ans.Value,
			IsCorrect:  scoring.Grade(ans.Question.ScoringQuestion(), ans.Value) == scoring.Correct,
			AIFeedback: ans.AIFeedback,
		})
	}
	return &resp, nil
}

// GetUserAttemptsForTest lists the caller's attempts on a test, newest first.
func (s *testSubmissionService) GetUserAttemptsForTest(actor Actor, testID uint) ([]dto.TestAttemptSummaryDTO, error) {
	if _, err := s.testRepo.FindByID(testID); err != nil {
		return nil, lookupError(ErrTestNotFound, "load test", err)
	}
	attempts, err := s.testAttemptRepo.FindAllByTestAndUser(testID, actor.UserID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Uint("userID", actor.UserID).Msg("GetUserAttemptsForTest: Failed to find attempts from repository.")
		return nil, persistenceError("list attempts", err)
	}

	dtos := make([]dto.TestAttemptSummaryDTO, 0, len(attempts))
	for _, attempt := range attempts {
		var summary dto.TestAttemptSummaryDTO
		if errCp := copier.Copy(&summary, &attempt); errCp != nil {
			log.Error().Err(errCp).Uint("attemptID", attempt.ID).Msg("GetUserAttemptsForTest: Error copying attempt to summary DTO")
			continue
		}
		dtos = append(dtos, summary)
	}
	return dtos, nil
}
