package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies failures so callers can decide between retrying
// within their timeout budget and giving up on the operation.
type Category string

const (
	CategoryConfiguration Category = "CONFIG"
	CategoryCredentials   Category = "CREDENTIALS"
	CategoryGateway       Category = "GATEWAY"
	CategoryNetwork       Category = "NETWORK"
	CategoryTimeout       Category = "TIMEOUT"
	CategoryRateLimit     Category = "RATE_LIMIT"
	CategoryOrder         Category = "ORDER"
	CategoryValidation    Category = "VALIDATION"
)

// BotError is a categorized error with the component and operation that
// produced it.
type BotError struct {
	Category   Category
	Component  string
	Operation  string
	Underlying error
	Retryable  bool
}

func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Component, e.Operation, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Component, e.Operation)
}

func (e *BotError) Unwrap() error {
	return e.Underlying
}

// Wrap attaches category and context to an existing error.
func Wrap(err error, category Category, component, operation string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Underlying: err,
		Retryable:  retryableCategory(category),
	}
}

// Categorize inspects a raw gateway error and assigns a category from
// its message. Unknown errors default to retryable gateway faults.
func Categorize(err error, component, operation string) *BotError {
	if err == nil {
		return nil
	}

	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return Wrap(err, CategoryTimeout, component, operation)
	case strings.Contains(msg, "connection"), strings.Contains(msg, "network"), strings.Contains(msg, "dial"):
		return Wrap(err, CategoryNetwork, component, operation)
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "too many requests"):
		return Wrap(err, CategoryRateLimit, component, operation)
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"), strings.Contains(msg, "authentication"):
		return Wrap(err, CategoryCredentials, component, operation)
	case strings.Contains(msg, "insufficient"):
		return Wrap(err, CategoryOrder, component, operation)
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "minimum"), strings.Contains(msg, "constraint"):
		return Wrap(err, CategoryValidation, component, operation)
	default:
		return Wrap(err, CategoryGateway, component, operation)
	}
}

// IsRetryable reports whether the error is worth retrying within the
// caller's existing timeout budget.
func IsRetryable(err error) bool {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr.Retryable
	}
	return retryableCategory(Categorize(err, "", "").Category)
}

func retryableCategory(category Category) bool {
	switch category {
	case CategoryNetwork, CategoryTimeout, CategoryRateLimit, CategoryGateway:
		return true
	default:
		return false
	}
}
