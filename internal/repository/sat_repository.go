package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type SatTestRepository interface {
	WithTx(tx *gorm.DB) SatTestRepository
	Create(test *model.SatTest) error
	FindByID(id uint) (*model.SatTest, error)
	FindByIDWithQuestions(id uint) (*model.SatTest, error)
}

type satTestRepository struct {
	db *gorm.DB
}

func NewSatTestRepository(db *gorm.DB) SatTestRepository {
	return &satTestRepository{db: db}
}

func (r *satTestRepository) WithTx(tx *gorm.DB) SatTestRepository {
	return &satTestRepository{db: tx}
}

func (r *satTestRepository) Create(test *model.SatTest) error {
	return r.db.Create(test).Error
}

func (r *satTestRepository) FindByID(id uint) (*model.SatTest, error) {
	var test model.SatTest
	if err := r.db.First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *satTestRepository) FindByIDWithQuestions(id uint) (*model.SatTest, error) {
	var test model.SatTest
	err := r.db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sat_questions.section ASC, sat_questions.order_in_test ASC, sat_questions.id ASC")
		}).
		Preload("Questions.AnswerOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sat_answer_options.id ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

type SatAttemptRepository interface {
	WithTx(tx *gorm.DB) SatAttemptRepository
	Create(attempt *model.SatAttempt) error
	CreateAnswers(answers []model.SatAnswer) error
	UpdateTotalScore(attemptID uint, total int) error
	FindByIDWithAnswers(id uint) (*model.SatAttempt, error)
}

type satAttemptRepository struct {
	db *gorm.DB
}

func NewSatAttemptRepository(db *gorm.DB) SatAttemptRepository {
	return &satAttemptRepository{db: db}
}

func (r *satAttemptRepository) WithTx(tx *gorm.DB) SatAttemptRepository {
	return &satAttemptRepository{db: tx}
}

func (r *satAttemptRepository) Create(attempt *model.SatAttempt) error {
	return r.db.Omit("Answers", "SatTest").Create(attempt).Error
}

func (r *satAttemptRepository) CreateAnswers(answers []model.SatAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Create(&answers).Error
}

func (r *satAttemptRepository) UpdateTotalScore(attemptID uint, total int) error {
	return r.db.Model(&model.SatAttempt{}).Where("id = ?", attemptID).Update("total_score", total).Error
}

func (r *satAttemptRepository) FindByIDWithAnswers(id uint) (*model.SatAttempt, error) {
	var attempt model.SatAttempt
	err := r.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("sat_answers.id ASC")
	}).First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

type DeadlineRepository interface {
	Create(deadline *model.Deadline) error
	Update(deadline *model.Deadline) error
	Delete(id uint) error
	FindByID(id uint) (*model.Deadline, error)
	FindBySatTest(satTestID uint) ([]model.Deadline, error)
	FindBySatTestAndGroups(satTestID uint, groupIDs []uint) ([]model.Deadline, error)
}

type deadlineRepository struct {
	db *gorm.DB
}

func NewDeadlineRepository(db *gorm.DB) DeadlineRepository {
	return &deadlineRepository{db: db}
}

func (r *deadlineRepository) Create(deadline *model.Deadline) error {
	return r.db.Create(deadline).Error
}

func (r *deadlineRepository) Update(deadline *model.Deadline) error {
	return r.db.Save(deadline).Error
}

func (r *deadlineRepository) Delete(id uint) error {
	res := r.db.Delete(&model.Deadline{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *deadlineRepository) FindByID(id uint) (*model.Deadline, error) {
	var deadline model.Deadline
	if err := r.db.First(&deadline, id).Error; err != nil {
		return nil, err
	}
	return &deadline, nil
}

func (r *deadlineRepository) FindBySatTest(satTestID uint) ([]model.Deadline, error) {
	var deadlines []model.Deadline
	err := r.db.Where("sat_test_id = ?", satTestID).Order("opens ASC").Find(&deadlines).Error
	return deadlines, err
}

func (r *deadlineRepository) FindBySatTestAndGroups(satTestID uint, groupIDs []uint) ([]model.Deadline, error) {
	var deadlines []model.Deadline
	if len(groupIDs) == 0 {
		return deadlines, nil
	}
	err := r.db.Where("sat_test_id = ? AND group_id IN ?", satTestID, groupIDs).Order("opens ASC").Find(&deadlines).Error
	return deadlines, err
}
