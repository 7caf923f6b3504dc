package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByTestIDWithOptions(testID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByTestIDWithOptions(testID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.
		Preload("AnswerOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.id ASC")
		}).
		Where("test_id = ?", testID).
		Order("order_in_test ASC, id ASC").
		Find(&questions).Error
	return questions, err
}
