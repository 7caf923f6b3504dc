package model

import "time"

// SuspendAnswer is a draft response saved while a test is paused. The set of
// rows for one (user, test) is replaced as a whole on every suspend.
type SuspendAnswer struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_suspend_user_test_question"`
	TestID      uint      `json:"test_id" gorm:"not null;uniqueIndex:idx_suspend_user_test_question"`
	QuestionID  uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_suspend_user_test_question"`
	Value       string    `json:"answer" gorm:"type:text;not null"`
	StartTime   time.Time `json:"start_time"`
	SuspendedAt time.Time `json:"suspended_at"`
}
