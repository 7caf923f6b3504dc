package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockRepository serializes work of one user on one test. Acquire must be
// called on a repository bound to a transaction; the lock is held until that
// transaction ends.
type LockRepository interface {
	WithTx(tx *gorm.DB) LockRepository
	Acquire(kind string, testID, userID uint) error
}

type lockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) LockRepository {
	return &lockRepository{db: db}
}

func (r *lockRepository) WithTx(tx *gorm.DB) LockRepository {
	return &lockRepository{db: tx}
}

func (r *lockRepository) Acquire(kind string, testID, userID uint) error {
	row := model.TestLock{Kind: kind, TestID: testID, UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return err
	}
	var locked model.TestLock
	return r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND test_id = ? AND user_id = ?", kind, testID, userID).
		First(&locked).Error
}
