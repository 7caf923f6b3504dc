package repository

import (
	"github.com/lshigami/testhall/internal/model"
	"gorm.io/gorm"
)

type GroupRepository interface {
	FindGroupIDsByUser(userID uint) ([]uint, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindGroupIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.GroupMember{}).Where("user_id = ?", userID).Order("group_id ASC").Pluck("group_id", &ids).Error
	return ids, err
}
