package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/testhall/internal/event"
	"github.com/lshigami/testhall/internal/model"
	"github.com/lshigami/testhall/internal/repository"
	"github.com/lshigami/testhall/internal/scoring"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock {
	return func() time.Time { return fixedNow }
}

var (
	student      = Actor{UserID: 7, Role: scoring.RoleStudent}
	otherStudent = Actor{UserID: 8, Role: scoring.RoleStudent}
	teacher      = Actor{UserID: 100, Role: scoring.RoleTeacher}
)

// newTestDB opens a private in-memory database with every table migrated.
// A single connection keeps the database alive and makes transactions
// strictly sequential.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db          *gorm.DB
	tests       repository.TestRepository
	questions   repository.QuestionRepository
	attempts    repository.TestAttemptRepository
	answers     repository.AnswerRepository
	suspends    repository.SuspendRepository
	locks       repository.LockRepository
	groups      repository.GroupRepository
	satTests    repository.SatTestRepository
	satAttempts repository.SatAttemptRepository
	deadlines   repository.DeadlineRepository
	publisher   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	db := newTestDB(t)
	return &fixture{
		db:          db,
		tests:       repository.NewTestRepository(db),
		questions:   repository.NewQuestionRepository(db),
		attempts:    repository.NewTestAttemptRepository(db),
		answers:     repository.NewAnswerRepository(db),
		suspends:    repository.NewSuspendRepository(db),
		locks:       repository.NewLockRepository(db),
		groups:      repository.NewGroupRepository(db),
		satTests:    repository.NewSatTestRepository(db),
		satAttempts: repository.NewSatAttemptRepository(db),
		deadlines:   repository.NewDeadlineRepository(db),
		publisher:   &recordingPublisher{},
	}
}

func (f *fixture) submissions() TestSubmissionService {
	return NewTestSubmissionService(f.tests, f.attempts, f.answers, f.suspends, f.locks, f.publisher, fixedClock(), f.db)
}

func (f *fixture) suspendService() SuspendService {
	return NewSuspendService(f.tests, f.attempts, f.suspends, f.locks, fixedClock(), f.db)
}

func (f *fixture) userTests() UserTestService {
	return NewUserTestService(f.tests, f.attempts, f.suspends, f.groups, fixedClock())
}

func (f *fixture) satSubmissions() SatSubmissionService {
	return NewSatSubmissionService(f.satTests, f.satAttempts, f.deadlines, f.groups, f.publisher, fixedClock(), f.db)
}

func (f *fixture) addMember(t *testing.T, groupID, userID uint) {
	t.Helper()
	if err := f.db.Create(&model.GroupMember{GroupID: groupID, UserID: userID}).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
}

// seedTest stores a three question test: Q1 single (correct "4"), Q2
// multiply (correct "red" and "blue"), Q3 writing (canonical "Paris").
func (f *fixture) seedTest(t *testing.T, opens *time.Time, maxAttempts int) *model.Test {
	t.Helper()
	test := &model.Test{
		GroupID:         1,
		Name:            "Quiz",
		Opens:           opens,
		DurationMinutes: 30,
		MaxAttempts:     maxAttempts,
		Questions: []model.Question{
			{Text: "2+2?", Type: "single", OrderInTest: 1, Explanation: "basic sum", AnswerOptions: []model.AnswerOption{
				{Text: "3"}, {Text: "4", IsCorrect: true},
			}},
			{Text: "Pick colors", Type: "multiply", OrderInTest: 2, AnswerOptions: []model.AnswerOption{
				{Text: "red", IsCorrect: true}, {Text: "blue", IsCorrect: true}, {Text: "dog"},
			}},
			{Text: "Capital of France?", Type: "writing", OrderInTest: 3, AnswerOptions: []model.AnswerOption{
				{Text: "Paris", IsCorrect: true},
			}},
		},
	}
	if err := f.db.Create(test).Error; err != nil {
		t.Fatalf("seed test: %v", err)
	}
	return test
}

func assertKind(t *testing.T, err error, kind ErrorKind, target error) {
	t.Helper()
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError of kind %s, got %v", kind, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, appErr.Kind, err)
	}
	if target != nil && !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

type recordingPublisher struct {
	keys   []string
	events []event.SubmissionEvent
	err    error
}

func (p *recordingPublisher) PublishSubmission(_ context.Context, routingKey string, evt event.SubmissionEvent) error {
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func timePtr(t time.Time) *time.Time { return &t }
