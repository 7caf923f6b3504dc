package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/testhall/internal/scoring"
	"gorm.io/gorm"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindPolicy
	KindForbidden
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPolicy:
		return "policy"
	case KindForbidden:
		return "forbidden"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrSatTestNotFound  = errors.New("sat test not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrDraftNotFound    = errors.New("no suspended answers for this test")
	ErrDeadlineNotFound = errors.New("deadline not found")
	ErrNotYetOpen       = errors.New("test is not open yet")
	ErrExpired          = errors.New("test has expired")
	ErrMaxAttempts      = errors.New("maximum number of attempts reached")
	ErrNoDeadline       = errors.New("no deadline is set for your group")
	ErrInvalidStartTime = errors.New("invalid startTime")
	ErrEmptyAnswers     = errors.New("answers must not be empty")
	ErrNotOwner         = errors.New("attempt belongs to another user")
	ErrInvalidWindow    = errors.New("due must be after opens")
	ErrFeedbackDisabled = errors.New("AI feedback is not configured")
)

// AppError is returned by every service method. Message is safe to show to
// the caller; Err keeps the cause for logging and errors.Is.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func validationError(err error) *AppError {
	return &AppError{Kind: KindValidation, Message: err.Error(), Err: err}
}

func notFoundError(err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: err.Error(), Err: err}
}

func policyError(err error) *AppError {
	return &AppError{Kind: KindPolicy, Message: err.Error(), Err: err}
}

func forbiddenError(err error) *AppError {
	return &AppError{Kind: KindForbidden, Message: err.Error(), Err: err}
}

func persistenceError(op string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// lookupError maps a repository error to NotFound when the row is missing
// and to Persistence otherwise.
func lookupError(notFound error, op string, err error) *AppError {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(notFound)
	}
	return persistenceError(op, err)
}

// policyDenied converts an eligibility denial into an error.
func policyDenied(reason scoring.Reason) *AppError {
	switch reason {
	case scoring.ReasonNotYetOpen:
		return policyError(ErrNotYetOpen)
	case scoring.ReasonExpired:
		return policyError(ErrExpired)
	case scoring.ReasonMaxAttemptsReached:
		return forbiddenError(ErrMaxAttempts)
	}
	return policyError(fmt.Errorf("not allowed: %s", reason))
}

// asAppError returns err as an AppError, wrapping unknown errors as
// persistence failures.
func asAppError(op string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return persistenceError(op, err)
}
