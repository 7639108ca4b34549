package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPollNotOpen   = errors.New("poll is not open")
	ErrPollNotClosed = errors.New("poll must be closed before settling")
	ErrPollSettled   = errors.New("poll already settled")
	ErrSlotDisabled  = errors.New("slot machine is disabled")
	ErrRoundClosed   = errors.New("giveaway round is closed")
)

// ValidationError is a rejected input; no state was changed
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports an unknown poll, option, bet or user
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// RateLimitedError is returned when an operation is throttled
type RateLimitedError struct {
	Operation  string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limited, retry in %s", e.Operation, e.RetryAfter.Round(time.Second))
	}
	return fmt.Sprintf("%s rate limited", e.Operation)
}

// InsufficientFundsError carries the balance the user actually has
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d available, need %d", e.Balance, e.Required)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsRateLimited reports whether err is a RateLimitedError
func IsRateLimited(err error) bool {
	var target *RateLimitedError
	return errors.As(err, &target)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError
func IsInsufficientFunds(err error) bool {
	var target *InsufficientFundsError
	return errors.As(err, &target)
}
