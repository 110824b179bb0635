package domain

import (
	"context"

	"self-analysis/internal/dto"
)

// QuestionRepository defines the interface for question persistence
type QuestionRepository interface {
	// GetActiveQuestions returns all active questions with their options,
	// ordered by (display_order, id)
	GetActiveQuestions(ctx context.Context) ([]Question, error)

	// GetQuestionByID retrieves a question (with options) by its ID
	GetQuestionByID(ctx context.Context, id string) (*Question, error)

	// ListQuestions returns questions matching the given filters,
	// ordered by (display_order, id)
	ListQuestions(ctx context.Context, filters dto.QuestionFilters) ([]Question, error)

	// SaveQuestion persists a new question
	SaveQuestion(ctx context.Context, question *Question) error

	// SaveOption persists a new option for a choice question
	SaveOption(ctx context.Context, option *Option) error
}

// TraitRepository defines the interface for trait persistence
type TraitRepository interface {
	// ListTraits returns traits matching the given filters, ordered by name
	ListTraits(ctx context.Context, filters dto.TraitFilters) ([]Trait, error)

	// GetTraitsByNames retrieves active traits whose names are in the given set
	GetTraitsByNames(ctx context.Context, names []string) ([]Trait, error)

	// SaveTrait persists a new trait
	SaveTrait(ctx context.Context, trait *Trait) error
}

// AnswerRepository defines the interface for answer persistence
type AnswerRepository interface {
	// UpsertAnswer inserts the answer, or replaces the existing row for the
	// same (user, question) pair while keeping its ID and created_at
	UpsertAnswer(ctx context.Context, answer *Answer) (*Answer, error)

	// GetAnswerByID retrieves an answer by its ID
	GetAnswerByID(ctx context.Context, id string) (*Answer, error)

	// GetAnswersByUserID returns all answers of a user, newest first
	GetAnswersByUserID(ctx context.Context, userID string) ([]Answer, error)

	// GetAnsweredQuestionIDs returns the set of question IDs the user has answered
	GetAnsweredQuestionIDs(ctx context.Context, userID string) (map[string]bool, error)

	// ListAnswersByUserID returns a page of the user's answers (newest first)
	// together with the total count
	ListAnswersByUserID(ctx context.Context, userID string, pagination dto.Pagination) ([]Answer, int, error)

	// DeleteAnswer removes an answer owned by the user
	DeleteAnswer(ctx context.Context, userID string, answerID string) error
}

// SelfAnalysisRepository defines the interface for aggregated analysis persistence
type SelfAnalysisRepository interface {
	// GetByUserID retrieves the user's analysis row, or nil when none exists yet
	GetByUserID(ctx context.Context, userID string) (*SelfAnalysis, error)

	// Save persists the analysis, creating the row on first write
	Save(ctx context.Context, analysis *SelfAnalysis) error
}
