package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type SuspendRepository interface {
	WithTx(tx *gorm.DB) SuspendRepository
	DeleteByUserAndTest(userID, testID uint) error
	CreateBatch(answers []model.SuspendAnswer) error
	FindByUserAndTest(userID, testID uint) ([]model.SuspendAnswer, error)
	FindSuspendedTestIDs(userID uint, testIDs []uint) ([]uint, error)
}

type suspendRepository struct {
	db *gorm.DB
}

func NewSuspendRepository(db *gorm.DB) SuspendRepository {
	return &suspendRepository{db: db}
}

func (r *suspendRepository) WithTx(tx *gorm.DB) SuspendRepository {
	return &suspendRepository{db: tx}
}

func (r *suspendRepository) DeleteByUserAndTest(userID, testID uint) error {
	return r.db.Where("user_id = ? AND test_id = ?", userID, testID).Delete(&model.SuspendAnswer{}).Error
}

func (r *suspendRepository) CreateBatch(answers []model.SuspendAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Create(&answers).Error
}

func (r *suspendRepository) FindByUserAndTest(userID, testID uint) ([]model.SuspendAnswer, error) {
	var answers []model.SuspendAnswer
	err := r.db.Where("user_id = ? AND test_id = ?", userID, testID).Order("id ASC").Find(&answers).Error
	return answers, err
}

func (r *suspendRepository) FindSuspendedTestIDs(userID uint, testIDs []uint) ([]uint, error) {
	var ids []uint
	if len(testIDs) == 0 {
		return ids, nil
	}
	err := r.db.Model(&model.SuspendAnswer{}).
		Where("user_id = ? AND test_id IN ?", userID, testIDs).
		Distinct().
		Pluck("test_id", &ids).Error
	return ids, err
}
