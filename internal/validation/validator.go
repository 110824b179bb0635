package validation

import (
	"regexp"
	"strings"

	"self-analysis/internal/domain"
)

const (
	// MaxAnswerBytes caps the raw answer body. Longer answers inflate the
	// assessment prompt without adding signal; a 2000-rune text plus JSON
	// framing fits comfortably.
	MaxAnswerBytes = 4096

	// MaxPageLimit caps the page size of list endpoints.
	MaxPageLimit = 100
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubmitAnswerRequest validates the shape of an answer submission.
// Payload semantics (option existence, required text) are checked against the
// question in the service layer; this only rejects what no question could accept.
func (v *Validator) ValidateSubmitAnswerRequest(questionID string, answer []byte) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(questionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("question_id"))
	} else if !isValidULID(questionID) {
		errors = append(errors, domain.NewInvalidFormatError("question_id", "Must be a valid ULID.", questionID))
	}

	if len(answer) > MaxAnswerBytes {
		errors = append(errors, domain.NewOutOfRangeError("answer", 0, MaxAnswerBytes))
	}

	return errors
}

// ValidateAnswerID validates an answer ID path parameter
func (v *Validator) ValidateAnswerID(answerID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(answerID) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !isValidULID(answerID) {
		errors = append(errors, domain.NewInvalidFormatError("id", "Must be a valid ULID.", answerID))
	}

	return errors
}

// ValidatePagination validates limit/offset query parameters
func (v *Validator) ValidatePagination(limit, offset int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if limit < 1 || limit > MaxPageLimit {
		errors = append(errors, domain.NewOutOfRangeError("limit", 1, MaxPageLimit))
	}
	if offset < 0 {
		errors = append(errors, domain.NewInvalidFormatError("offset", "Must be zero or greater.", offset))
	}

	return errors
}

// ValidatePolarity validates the polarity filter of trait listings
func (v *Validator) ValidatePolarity(polarity string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	switch strings.ToLower(polarity) {
	case "", string(domain.PolarityPositive), string(domain.PolarityNegative):
	default:
		errors = append(errors, domain.NewInvalidFormatError("polarity", "Must be positive or negative.", polarity))
	}

	return errors
}

// Helper functions for validation

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
