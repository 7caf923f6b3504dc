package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type TestAttemptRepository interface {
	WithTx(tx *gorm.DB) TestAttemptRepository
	Create(attempt *model.TestAttempt) error
	UpdateScore(attemptID uint, score int) error
	CountByTestAndUser(testID, userID uint) (int64, error)
	FindByIDWithDetails(id uint) (*model.TestAttempt, error)
	FindAllByTestAndUser(testID, userID uint) ([]model.TestAttempt, error)
	FindAttemptedTestIDs(userID uint, testIDs []uint) ([]uint, error)
}

type testAttemptRepository struct {
	db *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{db: db}
}

func (r *testAttemptRepository) WithTx(tx *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{db: tx}
}

func (r *testAttemptRepository) Create(attempt *model.TestAttempt) error {
	// Answers are not part of the insert; they are written separately once
	// the attempt id is known.
	return r.db.Omit("Answers", "Test").Create(attempt).Error
}

func (r *testAttemptRepository) UpdateScore(attemptID uint, score int) error {
	return r.db.Model(&model.TestAttempt{}).Where("id = ?", attemptID).Update("score", score).Error
}

func (r *testAttemptRepository) CountByTestAndUser(testID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.TestAttempt{}).
		Where("test_id = ? AND user_id = ?", testID, userID).
		Count(&count).Error
	return count, err
}

func (r *testAttemptRepository) FindByIDWithDetails(id uint) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.
		Preload("Test").
		Preload("Answers.Question.AnswerOptions").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *testAttemptRepository) FindAllByTestAndUser(testID, userID uint) ([]model.TestAttempt, error) {
	var attempts []model.TestAttempt
	err := r.db.
		Where("test_id = ? AND user_id = ?", testID, userID).
		Order("end_time DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *testAttemptRepository) FindAttemptedTestIDs(userID uint, testIDs []uint) ([]uint, error) {
	var ids []uint
	if len(testIDs) == 0 {
		return ids, nil
	}
	err := r.db.Model(&model.TestAttempt{}).
		Where("user_id = ? AND test_id IN ?", userID, testIDs).
		Distinct().
		Pluck("test_id", &ids).Error
	return ids, err
}
