package service

import (
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lshigami/testhall/internal/dto"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"github.com/rs/zerolog/log"
)

// TotalScoreKey is the entry of a SAT score map holding the sum of all
// sections. No section may use it as its name.
const TotalScoreKey = "totalScore"

type AdminTestService interface {
	CreateTest(req dto.CreateTestDTO) (*dto.CreatedDTO, error)
	CreateSatTest(req dto.CreateSatTestDTO) (*dto.CreatedDTO, error)
	GetExplanations(testID uint) ([]dto.ReviewQuestionDTO, error)
}

type adminTestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	satTestRepo  repository.SatTestRepository
}

func NewAdminTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	satTestRepo repository.SatTestRepository,
) AdminTestService {
	return &adminTestService{testRepo: testRepo, questionRepo: questionRepo, satTestRepo: satTestRepo}
}

func (s *adminTestService) CreateTest(req dto.CreateTestDTO) (*dto.CreatedDTO, error) {
	orderMap := make(map[int]bool)
	questions := make([]model.Question, 0, len(req.Questions))
	for i, qDto := range req.Questions {
		if orderMap[qDto.OrderInTest] {
			return nil, validationError(fmt.Errorf("duplicate order_in_test %d found in questions", qDto.OrderInTest))
		}
		orderMap[qDto.OrderInTest] = true
		if err := validateQuestion(qDto); err != nil {
			return nil, validationError(fmt.Errorf("question %d: %w", i+1, err))
		}

		var questionModel model.Question
		if err := copier.CopyWithOption(&questionModel, &qDto, copier.Option{DeepCopy: true}); err != nil {
			return nil, persistenceError("map question", err)
		}
		questionModel.AnswerOptions = make([]model.AnswerOption, 0, len(qDto.AnswerOptions))
		for _, o := range qDto.AnswerOptions {
			questionModel.AnswerOptions = append(questionModel.AnswerOptions, model.AnswerOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		questions = append(questions, questionModel)
	}

	testModel := model.Test{
		GroupID:         req.GroupID,
		Name:            req.Name,
		Description:     req.Description,
		Opens:           req.Opens,
		DurationMinutes: req.DurationMinutes,
		MaxAttempts:     req.MaxAttempts,
		Questions:       questions,
	}
	if err := s.testRepo.Create(&testModel); err != nil {
		log.Error().Err(err).Msg("CreateTest: Failed to create test in database")
		return nil, persistenceError("create test", err)
	}

	log.Info().Uint("testID", testModel.ID).Int("questions", len(questions)).Msg("CreateTest: Test created")
	return &dto.CreatedDTO{ID: testModel.ID, QuestionCount: len(questions)}, nil
}

func (s *adminTestService) CreateSatTest(req dto.CreateSatTestDTO) (*dto.CreatedDTO, error) {
	if req.Opens != nil && req.Due != nil && !req.Due.After(*req.Opens) {
		return nil, validationError(ErrInvalidWindow)
	}

	orderMap := make(map[string]map[int]bool)
	questions := make([]model.SatQuestion, 0, len(req.Questions))
	for i, qDto := range req.Questions {
		section := strings.TrimSpace(qDto.Section)
		if section == "" {
			section = scoring.DefaultSection
		}
		if section == TotalScoreKey {
			return nil, validationError(fmt.Errorf("question %d: section name %q is reserved", i+1, TotalScoreKey))
		}
		if orderMap[section] == nil {
			orderMap[section] = make(map[int]bool)
		}
		if orderMap[section][qDto.OrderInTest] {
			return nil, validationError(fmt.Errorf("duplicate order_in_test %d in section %q", qDto.OrderInTest, section))
		}
		orderMap[section][qDto.OrderInTest] = true
		if err := validateQuestion(qDto.CreateQuestionDTO); err != nil {
			return nil, validationError(fmt.Errorf("question %d: %w", i+1, err))
		}

		q := model.SatQuestion{
			Section:     section,
			Text:        qDto.Text,
			Hint:        qDto.Hint,
			ImageURL:    qDto.ImageURL,
			Explanation: qDto.Explanation,
			Type:        qDto.Type,
			OrderInTest: qDto.OrderInTest,
		}
		for _, o := range qDto.AnswerOptions {
			q.AnswerOptions = append(q.AnswerOptions, model.SatAnswerOption{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		questions = append(questions, q)
	}

	test := model.SatTest{
		Name:        req.Name,
		Description: req.Description,
		Opens:       req.Opens,
		Due:         req.Due,
		Questions:   questions,
	}
	if err := s.satTestRepo.Create(&test); err != nil {
		log.Error().Err(err).Msg("CreateSatTest: Failed to create SAT test in database")
		return nil, persistenceError("create sat test", err)
	}

	log.Info().Uint("satTestID", test.ID).Int("questions", len(questions)).Msg("CreateSatTest: SAT test created")
	return &dto.CreatedDTO{ID: test.ID, QuestionCount: len(questions)}, nil
}

// GetExplanations returns the questions of a test with their explanations
// and correct options, for staff review.
func (s *adminTestService) GetExplanations(testID uint) ([]dto.ReviewQuestionDTO, error) {
	if _, err := s.testRepo.FindByID(testID); err != nil {
		return nil, lookupError(ErrTestNotFound, "load test", err)
	}
	questions, err := s.questionRepo.FindByTestIDWithOptions(testID)
	if err != nil {
		log.Error().Err(err).Uint("testID", testID).Msg("GetExplanations: Failed to load questions")
		return nil, persistenceError("load questions", err)
	}
	out := make([]dto.ReviewQuestionDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, buildReviewQuestion(q))
	}
	return out, nil
}

// validateQuestion checks that a question can be graded: single and writing
// questions have exactly one correct option, multiply questions at least one.
func validateQuestion(q dto.CreateQuestionDTO) error {
	qType := scoring.QuestionType(q.Type)
	if !qType.Valid() {
		return fmt.Errorf("unknown question_type %q", q.Type)
	}
	correct := 0
	for _, o := range q.AnswerOptions {
		if o.IsCorrect {
			correct++
		}
	}
	switch qType {
	case scoring.QuestionSingle, scoring.QuestionWriting:
		if correct != 1 {
			return fmt.Errorf("%s question must have exactly one correct option, got %d", q.Type, correct)
		}
	case scoring.QuestionMultiply:
		if correct < 1 {
			return fmt.Errorf("multiply question must have at least one correct option")
		}
	}
	return nil
}
