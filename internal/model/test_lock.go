package model

const LockKindTest = "test"

// TestLock has one row per (kind, test, user). Submissions and suspends lock
// it FOR UPDATE so that concurrent requests of one user on one test run one
// after another.
type TestLock struct {
	Kind   string `gorm:"primaryKey;size:16"`
	TestID uint   `gorm:"primaryKey;autoIncrement:false"`
	UserID uint   `gorm:"primaryKey;autoIncrement:false"`
}
