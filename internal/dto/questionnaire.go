package dto

import (
	"encoding/json"
	"time"
)

// OptionResponse represents a selectable option of a choice question
type OptionResponse struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Value        string `json:"value"`
	DisplayOrder int    `json:"display_order"`
}

// QuestionResponse represents a question in the API response
// @Description Question information including options for choice types
type QuestionResponse struct {
	ID           string           `json:"id"`
	Text         string           `json:"text"`
	Type         string           `json:"type"`
	ParentID     *string          `json:"parent_id,omitempty"`
	Category     *string          `json:"category,omitempty"`
	Required     bool             `json:"required"`
	DisplayOrder int              `json:"display_order"`
	Options      []OptionResponse `json:"options,omitempty"`
}

// TraitResponse represents a personality trait in the API response
type TraitResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Polarity    string  `json:"polarity"`
	Description string  `json:"description,omitempty"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`
}

// SubmitAnswerRequest represents a user's answer submission
// @Description Request body for answering a question. The answer field accepts
// @Description a raw string for text/single_choice questions or the structured
// @Description {"text"|"option"|"options": ...} forms.
type SubmitAnswerRequest struct {
	QuestionID     string             `json:"question_id" validate:"required"`
	Answer         json.RawMessage    `json:"answer"`
	PositiveValues map[string]float64 `json:"positive_values,omitempty"`
	NegativeValues map[string]float64 `json:"negative_values,omitempty"`
	Quote          string             `json:"quote,omitempty"`
}

// AnswerResponse represents a stored answer in the API response
type AnswerResponse struct {
	ID             string             `json:"id"`
	QuestionID     string             `json:"question_id"`
	QuestionText   string             `json:"question_text,omitempty"`
	Payload        json.RawMessage    `json:"payload,omitempty"`
	PositiveValues map[string]float64 `json:"positive_values"`
	NegativeValues map[string]float64 `json:"negative_values"`
	Quote          string             `json:"quote,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// CategoryProgress represents per-category completion counts
type CategoryProgress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// ProgressResponse represents questionnaire completion in the API response
// @Description Overall and per-category completion of the questionnaire
type ProgressResponse struct {
	Answered   int                         `json:"answered"`
	Total      int                         `json:"total"`
	Percent    int                         `json:"percent"`
	ByCategory map[string]CategoryProgress `json:"by_category"`
}

// SubmitAnswerResponse is the response for answering a question. It carries
// the saved answer plus the next eligible question so the client can advance
// without a second round trip.
type SubmitAnswerResponse struct {
	SavedAnswer  AnswerResponse    `json:"saved_answer"`
	NextQuestion *QuestionResponse `json:"next_question,omitempty"`
	Complete     bool              `json:"complete"`
	Progress     ProgressResponse  `json:"progress"`
}

// NextQuestionResponse is the response for fetching the next eligible question.
type NextQuestionResponse struct {
	Question *QuestionResponse `json:"question,omitempty"`
	Complete bool              `json:"complete"`
	Progress ProgressResponse  `json:"progress"`
}

// AgentVerdict mirrors the completeness checker's verdict in responses.
type AgentVerdict struct {
	IsAnswerOK   bool   `json:"is_answer_ok"`
	Instructions string `json:"instructions,omitempty"`
}

// RejectionResponse is returned when a text answer fails the completeness check.
// @Description Rejection envelope carrying the agent's improvement instructions
type RejectionResponse struct {
	Agent   AgentVerdict `json:"agent"`
	Message string       `json:"message"`
}

// SelfAnalysisResponse represents the user's aggregated trait profile
// @Description Aggregated positive/negative trait means and representative quote
type SelfAnalysisResponse struct {
	CombinedPositives map[string]float64 `json:"combined_positives"`
	CombinedNegatives map[string]float64 `json:"combined_negatives"`
	Quote             string             `json:"quote,omitempty"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// TraitScoreItem pairs a trait key with its aggregated mean.
type TraitScoreItem struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// AnalysisOverviewResponse combines the aggregated profile with progress and
// the highest-scoring traits of each polarity.
type AnalysisOverviewResponse struct {
	Analysis       SelfAnalysisResponse `json:"analysis"`
	Progress       ProgressResponse     `json:"progress"`
	TopStrengths   []TraitScoreItem     `json:"top_strengths"`
	TopGrowthAreas []TraitScoreItem     `json:"top_growth_areas"`
}

// MyAnswersResponse is the response for listing the user's answers.
type MyAnswersResponse struct {
	Answers        []AnswerResponse `json:"answers"`
	PaginationInfo PaginationInfo   `json:"pagination_info"`
}

// --- Filtering DTOs ---

// FilterNull is the query value selecting rows where the filtered column is
// NULL (root questions, uncategorized questions).
const FilterNull = "null"

// QuestionFilters defines query parameters for listing questions.
type QuestionFilters struct {
	Category        string `query:"category"`         // Exact match, "null" for uncategorized, empty for all
	ParentID        string `query:"parent_id"`        // Children of a question, "null" for roots, empty for all
	IncludeInactive bool   `query:"include_inactive"` // Requires authentication
}

// TraitFilters defines query parameters for listing traits.
type TraitFilters struct {
	Polarity        string `query:"polarity"` // "positive" or "negative", empty for both
	IncludeInactive bool   `query:"include_inactive"`
}
