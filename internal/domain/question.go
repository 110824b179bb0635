package domain

import (
	"time"
)

// QuestionType enumerates the supported answer shapes.
type QuestionType string

const (
	QuestionTypeText         QuestionType = "text"
	QuestionTypeSingleChoice QuestionType = "single_choice"
	QuestionTypeMultiChoice  QuestionType = "multi_choice"
)

// IsValid reports whether t is one of the supported question types.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeText, QuestionTypeSingleChoice, QuestionTypeMultiChoice:
		return true
	}
	return false
}

// Question is a node in the questionnaire tree. A question with a parent is
// only presented once every ancestor has been answered. Inactive questions
// are invisible to eligibility and progress.
type Question struct {
	ID           string
	Text         string
	Type         QuestionType
	ParentID     *string
	Category     *string
	Required     bool
	IsActive     bool
	DisplayOrder int
	Options      []Option
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewQuestion creates a new Question instance
func NewQuestion(text string, qType QuestionType, displayOrder int) *Question {
	now := time.Now()
	return &Question{
		Text:         text,
		Type:         qType,
		Required:     false,
		IsActive:     true,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewValidationDomainError("text is required")
	}
	if !q.Type.IsValid() {
		return NewValidationDomainError("type must be one of text, single_choice, multi_choice")
	}
	if q.Type == QuestionTypeText && len(q.Options) > 0 {
		return NewValidationDomainError("a text question cannot have options")
	}
	if q.Type != QuestionTypeText && len(q.Options) == 0 {
		return NewValidationDomainError("a choice question needs at least one option")
	}
	return nil
}

// CategoryKey returns the category label used for progress bucketing. A
// question without a category falls into the empty-string bucket.
func (q *Question) CategoryKey() string {
	if q.Category == nil {
		return ""
	}
	return *q.Category
}

// Option is one selectable choice of a single_choice or multi_choice
// question. Label is what the client displays, Value is the semantic key.
type Option struct {
	ID           string
	QuestionID   string
	Label        string
	Value        string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOption creates a new Option instance
func NewOption(questionID, label, value string, displayOrder int) *Option {
	now := time.Now()
	return &Option{
		QuestionID:   questionID,
		Label:        label,
		Value:        value,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate validates the option
func (o *Option) Validate() error {
	if o.QuestionID == "" {
		return NewValidationDomainError("question ID is required")
	}
	if o.Label == "" {
		return NewValidationDomainError("label is required")
	}
	if o.Value == "" {
		return NewValidationDomainError("value is required")
	}
	return nil
}

// HasOption reports whether the given option id belongs to this question.
func (q *Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}
