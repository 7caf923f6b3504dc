package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	CreateBatch(answers []model.Answer) error
	UpdateFeedback(answerID uint, feedback string) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func (r *answerRepository) CreateBatch(answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Omit("Question").Create(&answers).Error
}

func (r *answerRepository) UpdateFeedback(answerID uint, feedback string) error {
	return r.db.Model(&model.Answer{}).Where("id = ?", answerID).Update("ai_feedback", feedback).Error
}
