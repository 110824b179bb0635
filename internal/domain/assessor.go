package domain

import (
	"context"
	"fmt"
)

// AssessmentRequest carries everything the text-assessment capability needs
// to judge a free-text answer.
type AssessmentRequest struct {
	QuestionText string
	QuestionType QuestionType
	Required     bool
	Category     string
	AnswerText   string
}

// PromptPayload renders the question in the same bracketed form that
// QuestionPromptPayload produces, so prompts and local checks agree on what
// the capability sees.
func (r AssessmentRequest) PromptPayload() string {
	return fmt.Sprintf("[type=%s; required=%t; category=%s] %s", r.QuestionType, r.Required, r.Category, r.QuestionText)
}

// ScoringRequest carries the inputs of the trait-scoring capability.
type ScoringRequest struct {
	QuestionText string
	AnswerText   string
}

// TraitAssessment is the raw output of the trait-scoring capability before
// sanitization: positive and negative score maps plus a short quote.
type TraitAssessment struct {
	Positive TraitScores `json:"positive"`
	Negative TraitScores `json:"negative"`
	Quote    string      `json:"quote"`
}

// Sanitize clamps every score into [0,100] and bounds the quote. Applied to
// all capability output before persistence.
func (a *TraitAssessment) Sanitize() {
	a.Positive = SanitizeScores(a.Positive)
	a.Negative = SanitizeScores(a.Negative)
	a.Quote = NormalizeQuote(a.Quote)
}

// CompletenessValidator is the external text-assessment capability. A failed
// call returns an error distinct from a negative verdict; it never comes
// back as a false "ok".
type CompletenessValidator interface {
	// CheckCompleteness judges whether a free-text answer is substantive
	// enough for trait scoring.
	CheckCompleteness(ctx context.Context, req AssessmentRequest) (*CompletenessVerdict, error)
}

// TraitScorer is the external trait-scoring capability.
type TraitScorer interface {
	// ScoreTraits derives positive/negative trait scores and a quote from a
	// validated free-text answer.
	ScoreTraits(ctx context.Context, req ScoringRequest) (*TraitAssessment, error)
}
