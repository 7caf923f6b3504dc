package service

import (
	"github.com/jinzhu/copier"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/rs/zerolog/log"
)

type UserTestService interface {
	GetAllTests(actor Actor) ([]dto.TestSummaryDTO, error)
	GetTestDetails(actor Actor, testID uint) (*dto.TestViewDTO, error)
}

type userTestService struct {
	testRepo        repository.TestRepository
	testAttemptRepo repository.TestAttemptRepository
	suspendRepo     repository.SuspendRepository
	groupRepo       repository.GroupRepository
	clock           Clock
}

func NewUserTestService(
	testRepo repository.TestRepository,
	testAttemptRepo repository.TestAttemptRepository,
	suspendRepo repository.SuspendRepository,
	groupRepo repository.GroupRepository,
	clock Clock,
) UserTestService {
	return &userTestService{
		testRepo:        testRepo,
		testAttemptRepo: testAttemptRepo,
		suspendRepo:     suspendRepo,
		groupRepo:       groupRepo,
		clock:           clock,
	}
}

// GetAllTests lists the tests of the caller's groups (all tests for staff)
// with whether a draft exists and whether the caller already submitted.
func (s *userTestService) GetAllTests(actor Actor) ([]dto.TestSummaryDTO, error) {
	var (
		tests []model.Test
		err   error
	)
	if actor.IsStudent() {
		groupIDs, gErr := s.groupRepo.FindGroupIDsByUser(actor.UserID)
		if gErr != nil {
			log.Error().Err(gErr).Uint("userID", actor.UserID).Msg("GetAllTests: Failed to resolve user groups")
			return nil, persistenceError("load groups", gErr)
		}
		tests, err = s.testRepo.FindAllByGroupIDs(groupIDs)
	} else {
		tests, err = s.testRepo.FindAll()
	}
	if err != nil {
		log.Error().Err(err).Msg("GetAllTests: Failed to get tests from repository")
		return nil, persistenceError("list tests", err)
	}

	testIDs := make([]uint, 0, len(tests))
	for _, t := range tests {
		testIDs = append(testIDs, t.ID)
	}
	suspended, err := s.suspendRepo.FindSuspendedTestIDs(actor.UserID, testIDs)
	if err != nil {
		return nil, persistenceError("list drafts", err)
	}
	attempted, err := s.testAttemptRepo.FindAttemptedTestIDs(actor.UserID, testIDs)
	if err != nil {
		return nil, persistenceError("list attempted tests", err)
	}
	hasDraft := toSet(suspended)
	completed := toSet(attempted)

	dtos := make([]dto.TestSummaryDTO, 0, len(tests))
	for _, t := range tests {
		var summary dto.TestSummaryDTO
		if errCp := copier.Copy(&summary, &t); errCp != nil {
			log.Error().Err(errCp).Uint("testID", t.ID).Msg("GetAllTests: Error copying test to summary DTO")
			continue
		}
		summary.Continue = hasDraft[t.ID]
		summary.IsCompleted = completed[t.ID]
		dtos = append(dtos, summary)
	}
	return dtos, nil
}

// GetTestDetails returns the pre-submission view of a test. Students cannot
// open a test before it opens.
func (s *userTestService) GetTestDetails(actor Actor, testID uint) (*dto.TestViewDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(testID)
	if err != nil {
		appErr := lookupError(ErrTestNotFound, "load test", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(err).Uint("testID", testID).Msg("GetTestDetails: Failed to get test details from repository")
		}
		return nil, appErr
	}

	decision := scoring.CheckEligibility(scoring.Policy{Opens: test.Opens}, actor.Role, s.clock())
	if !decision.Allowed {
		return nil, policyDenied(decision.Reason)
	}

	view := buildTestView(test)
	return &view, nil
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
