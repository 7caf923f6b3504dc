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

// SatSubmissionService takes, grades and reviews sectioned SAT tests.
type SatSubmissionService interface {
	GetSatTest(actor Actor, satTestID uint) (*dto.SatTestViewDTO, error)
	SubmitSatTest(actor Actor, satTestID uint, req dto.SatTestSubmitDTO) (*dto.SatSubmitResultDTO, error)
	GetAttemptAnswers(actor Actor, attemptID, userID uint) (*dto.SatAttemptAnswersDTO, error)
}

type satSubmissionService struct {
	satTestRepo    repository.SatTestRepository
	satAttemptRepo repository.SatAttemptRepository
	deadlineRepo   repository.DeadlineRepository
	groupRepo      repository.GroupRepository
	publisher      event.Publisher
	clock          Clock
	db             *gorm.DB
}

func NewSatSubmissionService(
	satTestRepo repository.SatTestRepository,
	satAttemptRepo repository.SatAttemptRepository,
	deadlineRepo repository.DeadlineRepository,
	groupRepo repository.GroupRepository,
	publisher event.Publisher,
	clock Clock,
	db *gorm.DB,
) SatSubmissionService {
	return &satSubmissionService{
		satTestRepo:    satTestRepo,
		satAttemptRepo: satAttemptRepo,
		deadlineRepo:   deadlineRepo,
		groupRepo:      groupRepo,
		publisher:      publisher,
		clock:          clock,
		db:             db,
	}
}

// pickDeadline chooses the window that applies to a caller with several
// group deadlines: the one containing now, else the next one to open, else
// the one that closed last.
func pickDeadline(deadlines []model.Deadline, now time.Time) *model.Deadline {
	var current, upcoming, past *model.Deadline
	for i := range deadlines {
		d := &deadlines[i]
		switch {
		case now.Before(d.Opens):
			if upcoming == nil || d.Opens.Before(upcoming.Opens) {
				upcoming = d
			}
		case now.After(d.Due):
			if past == nil || d.Due.After(past.Due) {
				past = d
			}
		default:
			if current == nil || d.Due.Before(current.Due) {
				current = d
			}
		}
	}
	switch {
	case current != nil:
		return current
	case upcoming != nil:
		return upcoming
	}
	return past
}

// resolvePolicy returns the window the caller is held to for a SAT test.
// Staff are never gated.
func (s *satSubmissionService) resolvePolicy(actor Actor, test *model.SatTest, now time.Time) (scoring.Policy, error) {
	if !actor.IsStudent() {
		return scoring.Policy{}, nil
	}
	groupIDs, err := s.groupRepo.FindGroupIDsByUser(actor.UserID)
	if err != nil {
		return scoring.Policy{}, persistenceError("load groups", err)
	}
	deadlines, err := s.deadlineRepo.FindBySatTestAndGroups(test.ID, groupIDs)
	if err != nil {
		return scoring.Policy{}, persistenceError("load deadlines", err)
	}
	if d := pickDeadline(deadlines, now); d != nil {
		opens, due := d.Opens, d.Due
		return scoring.Policy{Opens: &opens, Due: &due}, nil
	}
	if test.Opens != nil || test.Due != nil {
		return scoring.Policy{Opens: test.Opens, Due: test.Due}, nil
	}
	return scoring.Policy{}, policyError(ErrNoDeadline)
}

func (s *satSubmissionService) GetSatTest(actor Actor, satTestID uint) (*dto.SatTestViewDTO, error) {
	test, err := s.satTestRepo.FindByIDWithQuestions(satTestID)
	if err != nil {
		appErr := lookupError(ErrSatTestNotFound, "load sat test", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(err).Uint("satTestID", satTestID).Msg("GetSatTest: Failed to load SAT test")
		}
		return nil, appErr
	}
	now := s.clock()
	policy, err := s.resolvePolicy(actor, test, now)
	if err != nil {
		return nil, err
	}
	// Viewing is allowed after the due date, only the opening is enforced.
	policy.Due = nil
	if decision := scoring.CheckEligibility(policy, actor.Role, now); !decision.Allowed {
		return nil, policyDenied(decision.Reason)
	}
	view := buildSatTestView(test)
	return &view, nil
}

// SubmitSatTest grades a sectioned submission and records one attempt with
// its answers and total score.
func (s *satSubmissionService) SubmitSatTest(actor Actor, satTestID uint, req dto.SatTestSubmitDTO) (*dto.SatSubmitResultDTO, error) {
	timer := time.Now()
	result, scores, err := s.submit(actor, satTestID, req)
	metrics.Submissions.WithLabelValues(metrics.PipelineSatTest, metrics.Outcome(err)).Inc()
	metrics.SubmissionDuration.WithLabelValues(metrics.PipelineSatTest).Observe(time.Since(timer).Seconds())
	if err != nil {
		return nil, err
	}

	evt := event.SubmissionEvent{
		TestID:      satTestID,
		AttemptID:   result.AttemptID,
		UserID:      actor.UserID,
		Score:       scores.Total(),
		Sections:    scores,
		SubmittedAt: s.clock(),
	}
	if pubErr := s.publisher.PublishSubmission(context.Background(), event.RoutingSatTestSubmitted, evt); pubErr != nil {
		log.Warn().Err(pubErr).Uint("satAttemptID", result.AttemptID).Msg("SubmitSatTest: Failed to publish submission event")
	}
	return result, nil
}

func (s *satSubmissionService) submit(actor Actor, satTestID uint, req dto.SatTestSubmitDTO) (*dto.SatSubmitResultDTO, scoring.SectionScores, error) {
	submitted := flattenSatAnswers(req.Answers)
	if len(submitted) == 0 {
		return nil, nil, validationError(ErrEmptyAnswers)
	}

	test, err := s.satTestRepo.FindByIDWithQuestions(satTestID)
	if err != nil {
		return nil, nil, lookupError(ErrSatTestNotFound, "load sat test", err)
	}
	now := s.clock()
	policy, err := s.resolvePolicy(actor, test, now)
	if err != nil {
		return nil, nil, err
	}
	if decision := scoring.CheckEligibility(policy, actor.Role, now); !decision.Allowed {
		metrics.EligibilityDenials.WithLabelValues(metrics.PipelineSatTest, string(decision.Reason)).Inc()
		log.Info().Uint("satTestID", satTestID).Uint("userID", actor.UserID).Str("reason", string(decision.Reason)).Msg("SubmitSatTest: Submission denied")
		return nil, nil, policyDenied(decision.Reason)
	}

	questions := test.ScoringQuestions()
	accepted := scoring.FilterAnswers(scoring.IndexQuestions(questions), submitted)
	scores := scoring.ComputeSectionScores(questions, accepted)

	// SAT tests have no attempt cap, so concurrent submissions of one user
	// are independent and need no lock.
	var attempt model.SatAttempt
	err = s.db.Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.satAttemptRepo.WithTx(tx)
		attempt = model.SatAttempt{
			SatTestID: satTestID,
			UserID:    actor.UserID,
			StartTime: now,
			EndTime:   now,
		}
		if err := attemptRepo.Create(&attempt); err != nil {
			return persistenceError("create sat attempt", err)
		}
		answers := make([]model.SatAnswer, 0, len(accepted))
		for _, a := range accepted {
			answers = append(answers, model.SatAnswer{
				SatAttemptID:  attempt.ID,
				SatQuestionID: a.QuestionID,
				UserID:        actor.UserID,
				Value:         a.Value,
			})
		}
		if err := attemptRepo.CreateAnswers(answers); err != nil {
			return persistenceError("create sat answers", err)
		}
		if err := attemptRepo.UpdateTotalScore(attempt.ID, scores.Total()); err != nil {
			return persistenceError("update total score", err)
		}
		return nil
	})
	if err != nil {
		appErr := asAppError("submit sat test", err)
		log.Error().Err(appErr.Err).Uint("satTestID", satTestID).Uint("userID", actor.UserID).Msg("SubmitSatTest: Transaction rolled back")
		return nil, nil, appErr
	}

	log.Info().Uint("satTestID", satTestID).Uint("userID", actor.UserID).Uint("satAttemptID", attempt.ID).Int("total", scores.Total()).Msg("SubmitSatTest: Attempt recorded")
	return &dto.SatSubmitResultDTO{AttemptID: attempt.ID, Scores: scoreMap(scores)}, scores, nil
}

// GetAttemptAnswers reviews one SAT attempt of userID. It only reads: the
// section scores are recomputed from the stored answers and nothing is
// written back.
func (s *satSubmissionService) GetAttemptAnswers(actor Actor, attemptID, userID uint) (*dto.SatAttemptAnswersDTO, error) {
	if !actor.canSee(userID) {
		return nil, forbiddenError(ErrNotOwner)
	}
	attempt, err := s.satAttemptRepo.FindByIDWithAnswers(attemptID)
	if err != nil {
		appErr := lookupError(ErrAttemptNotFound, "load sat attempt", err)
		if appErr.Kind == KindPersistence {
			log.Error().Err(err).Uint("satAttemptID", attemptID).Msg("GetAttemptAnswers: Failed to load attempt")
		}
		return nil, appErr
	}
	if attempt.UserID != userID {
		return nil, notFoundError(ErrAttemptNotFound)
	}
	test, err := s.satTestRepo.FindByIDWithQuestions(attempt.SatTestID)
	if err != nil {
		return nil, lookupError(ErrSatTestNotFound, "load sat test", err)
	}

	answerByQuestion := make(map[uint]string, len(attempt.Answers))
	submitted := make([]scoring.SubmittedAnswer, 0, len(attempt.Answers))
	for _, a := range attempt.Answers {
		answerByQuestion[a.SatQuestionID] = a.Value
		submitted = append(submitted, scoring.SubmittedAnswer{QuestionID: a.SatQuestionID, Value: a.Value})
	}
	scores := scoring.ComputeSectionScores(test.ScoringQuestions(), submitted)

	var attemptDTO dto.SatAttemptDTO
	if err := copier.Copy(&attemptDTO, attempt); err != nil {
		return nil, persistenceError("map sat attempt", err)
	}

	review := dto.SatTestReviewDTO{
		ID:           test.ID,
		Name:         test.Name,
		Description:  test.Description,
		SatQuestions: make([]dto.SatQuestionReviewDTO, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		var answer *string
		if v, ok := answerByQuestion[q.ID]; ok {
			value := v
			answer = &value
		}
		review.SatQuestions = append(review.SatQuestions, buildSatReviewQuestion(q, answer))
	}

	return &dto.SatAttemptAnswersDTO{
		Attempt: attemptDTO,
		Scores:  scoreMap(scores),
		SatTest: review,
	}, nil
}

// flattenSatAnswers turns section-keyed answers into one list in a stable
// section order. The section key is informational; grading uses the
// question's own section.
func flattenSatAnswers(bySection map[string][]dto.SatAnswerItemDTO) []scoring.SubmittedAnswer {
	sections := make([]string, 0, len(bySection))
	for section := range bySection {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	var out []scoring.SubmittedAnswer
	for _, section := range sections {
		for _, item := range bySection[section] {
			out = append(out, scoring.SubmittedAnswer{QuestionID: item.QuestionID, Value: item.OptionID.String()})
		}
	}
	return out
}

func scoreMap(scores scoring.SectionScores) map[string]int {
	out := make(map[string]int, len(scores)+1)
	for section, n := range scores {
		out[section] = n
	}
	out[TotalScoreKey] = scores.Total()
	return out
}
