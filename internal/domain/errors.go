package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Field-level validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Questionnaire specific errors
	CodeQuestionNotFound       ErrorCode = "QUESTION_NOT_FOUND"
	CodeAnswerNotFound         ErrorCode = "ANSWER_NOT_FOUND"
	CodeInvalidAnswer          ErrorCode = "INVALID_ANSWER"
	CodeAnswerRejected         ErrorCode = "ANSWER_REJECTED"
	CodeAssessmentServiceError ErrorCode = "ASSESSMENT_SERVICE_ERROR"
	CodeAggregationError       ErrorCode = "AGGREGATION_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair surfaced in the error response details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

// NewValidationDomainError reports an entity invariant violation, as opposed
// to the per-field ValidationErrors produced by request validation.
func NewValidationDomainError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewQuestionNotFoundError(questionID string) *DomainError {
	return NewError(CodeQuestionNotFound, fmt.Sprintf("Question not found with ID: %s", questionID), nil)
}

func NewAnswerNotFoundError(answerID string) *DomainError {
	return NewError(CodeAnswerNotFound, fmt.Sprintf("Answer not found with ID: %s", answerID), nil)
}

func NewInvalidAnswerError(message string) *DomainError {
	return NewError(CodeInvalidAnswer, message, nil)
}

func NewAssessmentServiceError(cause error) *DomainError {
	return NewError(CodeAssessmentServiceError, "Failed to process with assessment service", cause)
}

func NewAggregationError(userID string, cause error) *DomainError {
	return NewError(CodeAggregationError, fmt.Sprintf("Failed to recalculate analysis for user %s", userID), cause)
}

// AnswerRejectedError carries the completeness verdict back to the handler
// so the client sees the assistant's improvement instructions.
type AnswerRejectedError struct {
	Verdict *CompletenessVerdict
}

func (e *AnswerRejectedError) Error() string {
	if e.Verdict != nil && e.Verdict.Instructions != "" {
		return e.Verdict.Instructions
	}
	return "answer rejected as incomplete"
}

func NewAnswerRejectedError(verdict *CompletenessVerdict) *AnswerRejectedError {
	return &AnswerRejectedError{Verdict: verdict}
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field errors so a request can report all of
// them at once instead of failing on the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%s (and %d more)", e[0].Error(), len(e)-1)
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "This field is required."}
}

func NewInvalidFormatError(field, message string, value interface{}) ValidationError {
	return ValidationError{Field: field, Message: message, Value: value}
}

func NewOutOfRangeError(field string, min, max float64) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Must be between %g and %g.", min, max),
	}
}
