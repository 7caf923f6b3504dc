package service

import (
	"time"

	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/metrics"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SuspendService saves and restores the in-progress answers of a test.
type SuspendService interface {
	Suspend(actor Actor, testID uint, req dto.TestSuspendDTO) (*dto.MessageResponse, error)
	Resume(actor Actor, testID uint) (*dto.DraftTestDTO, error)
}

type suspendService struct {
	testRepo        repository.TestRepository
	testAttemptRepo repository.TestAttemptRepository
	suspendRepo     repository.SuspendRepository
	lockRepo        repository.LockRepository
	clock           Clock
	db              *gorm.DB
}

func NewSuspendService(
	testRepo repository.TestRepository,
	testAttemptRepo repository.TestAttemptRepository,
	suspendRepo repository.SuspendRepository,
	lockRepo repository.LockRepository,
	clock Clock,
	db *gorm.DB,
) SuspendService {
	return &suspendService{
		testRepo:        testRepo,
		testAttemptRepo: testAttemptRepo,
		suspendRepo:     suspendRepo,
		lockRepo:        lockRepo,
		clock:           clock,
		db:              db,
	}
}

// Suspend replaces the caller's draft for the test. Deleting the old rows and
// inserting the new ones is one transaction, so a failure keeps the previous
// draft intact.
func (s *suspendService) Suspend(actor Actor, testID uint, req dto.TestSuspendDTO) (*dto.MessageResponse, error) {
	resp, err := s.suspend(actor, testID, req)
	metrics.Suspends.WithLabelValues(metrics.Outcome(err)).Inc()
	return resp, err
}

func (s *suspendService) suspend(actor Actor, testID uint, req dto.TestSuspendDTO) (*dto.MessageResponse, error) {
	if len(req.Answers) == 0 {
		return nil, validationError(ErrEmptyAnswers)
	}
	startTime, err := ParseStartTime(req.StartTime)
	if err != nil {
		return nil, validationError(err)
	}

	var saved int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		test, err := s.testRepo.WithTx(tx).FindByIDWithQuestions(testID)
		if err != nil {
			return lookupError(ErrTestNotFound, "load test", err)
		}
		if err := s.lockRepo.WithTx(tx).Acquire(model.LockKindTest, testID, actor.UserID); err != nil {
			return persistenceError("lock user test", err)
		}
		count, err := s.testAttemptRepo.WithTx(tx).CountByTestAndUser(testID, actor.UserID)
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
			return policyDenied(decision.Reason)
		}

		index := scoring.IndexQuestions(test.ScoringQuestions())
		accepted := scoring.FilterAnswers(index, toSubmitted(req.Answers))
		rows := make([]model.SuspendAnswer, 0, len(accepted))
		for _, a := range accepted {
			rows = append(rows, model.SuspendAnswer{
				UserID:      actor.UserID,
				TestID:      testID,
				QuestionID:  a.QuestionID,
				Value:       a.Value,
				StartTime:   startTime,
				SuspendedAt: now,
			})
		}

		suspendRepo := s.suspendRepo.WithTx(tx)
		if err := suspendRepo.DeleteByUserAndTest(actor.UserID, testID); err != nil {
			return persistenceError("delete previous draft", err)
		}
		if err := suspendRepo.CreateBatch(rows); err != nil {
			return persistenceError("save draft", err)
		}
		saved = len(rows)
		return nil
	})
	if err != nil {
		appErr := asAppError("suspend test", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(appErr.Err).Uint("testID", testID).Uint("userID", actor.UserID).Msg("SuspendTest: Transaction rolled back")
		}
		return nil, appErr
	}

	log.Info().Uint("testID", testID).Uint("userID", actor.UserID).Int("answers", saved).Msg("SuspendTest: Draft saved")
	return &dto.MessageResponse{Message: "test suspended"}, nil
}

// Resume returns the test view with the caller's draft answers filled in.
func (s *suspendService) Resume(actor Actor, testID uint) (*dto.DraftTestDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		appErr := lookupError(ErrTestNotFound, "load test", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(err).Uint("testID", testID).Msg("ContinueTest: Failed to load test")
		}
		return nil, appErr
	}
	rows, err := s.suspendRepo.FindByUserAndTest(actor.UserID, testID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Uint("userID", actor.UserID).Msg("ContinueTest: Failed to load draft")
		return nil, persistenceError("load draft", err)
	}
	if len(rows) == 0 {
		return nil, notFoundError(ErrDraftNotFound)
	}

	draft := make(map[uint]string, len(rows))
	var startTime, suspendedAt time.Time
	for _, r := range rows {
		draft[r.QuestionID] = r.Value
		startTime = r.StartTime
		if r.SuspendedAt.After(suspendedAt) {
			suspendedAt = r.SuspendedAt
		}
	}

	view := buildTestView(test)
	for i := range view.Questions {
		q := &view.Questions[i]
		value, ok := draft[q.ID]
		if !ok {
			continue
		}
		answer := value
		q.StudentAnswer = &answer
		if scoring.QuestionType(q.Type) == scoring.QuestionWriting {
			continue
		}
		if optionID, isID := scoring.ParseOptionID(value); isID {
			for j := range q.AnswerOptions {
				if q.AnswerOptions[j].ID == optionID {
					q.AnswerOptions[j].Selected = true
				}
			}
		}
	}

	return &dto.DraftTestDTO{
		TestViewDTO: view,
		StartTime:   startTime,
		SuspendedAt: suspendedAt,
	}, nil
}
