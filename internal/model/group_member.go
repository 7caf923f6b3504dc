package model

import "time"

// GroupMember is the read side of group membership, which is managed by the
// groups service. It is only used to resolve the groups of a caller.
type GroupMember struct {
	GroupID   uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
