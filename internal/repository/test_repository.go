package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type TestRepository interface {
	WithTx(tx *gorm.DB) TestRepository
	Create(test *model.Test) error
	FindByID(id uint) (*model.Test, error)
	FindByIDWithQuestions(id uint) (*model.Test, error)
	FindAll() ([]model.Test, error)
	FindAllByGroupIDs(groupIDs []uint) ([]model.Test, error)
}

type testRepository struct {
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) WithTx(tx *gorm.DB) TestRepository {
	return &testRepository{db: tx}
}

func (r *testRepository) Create(test *model.Test) error {
	// Questions and their answer options are created through the associations.
	return r.db.Create(test).Error
}

func (r *testRepository) FindByID(id uint) (*model.Test, error) {
	var test model.Test
	if err := r.db.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindByIDWithQuestions(id uint) (*model.Test, error) {
	var test model.Test
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_in_test ASC, questions.id ASC")
		}).
		Preload("Questions.AnswerOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.id ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) FindAll() ([]model.Test, error) {
	var tests []model.Test
	err := r.db.Order("created_at DESC").Find(&tests).Error
	return tests, err
}

func (r *testRepository) FindAllByGroupIDs(groupIDs []uint) ([]model.Test, error) {
	var tests []model.Test
	if len(groupIDs) == 0 {
		return tests, nil
	}
	err := r.db.Where("group_id IN ?", groupIDs).Order("created_at DESC").Find(&tests).Error
	return tests, err
}
