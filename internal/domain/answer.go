package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// AnswerPayload is the normalized answer body. Exactly one field is set,
// matching the question type: Text for text questions, OptionID for
// single_choice, OptionIDs for multi_choice.
type AnswerPayload struct {
	Text      string   `json:"text,omitempty"`
	OptionID  string   `json:"option,omitempty"`
	OptionIDs []string `json:"options,omitempty"`
}

// IsEmpty reports whether the payload carries no answer at all.
func (p *AnswerPayload) IsEmpty() bool {
	return p == nil || (p.Text == "" && p.OptionID == "" && len(p.OptionIDs) == 0)
}

// Answer is a user's single answer to a question. There is at most one per
// (user, question); resubmitting overwrites. Trait maps are filled by the
// scoring capability for text answers and stay empty (or client-supplied)
// for choice answers.
type Answer struct {
	ID             string
	UserID         string
	QuestionID     string
	Payload        *AnswerPayload
	PositiveValues TraitScores
	NegativeValues TraitScores
	Quote          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAnswer creates a new Answer instance
func NewAnswer(userID, questionID string, payload *AnswerPayload) *Answer {
	now := time.Now()
	return &Answer{
		UserID:         userID,
		QuestionID:     questionID,
		Payload:        payload,
		PositiveValues: TraitScores{},
		NegativeValues: TraitScores{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate validates the answer
func (a *Answer) Validate() error {
	if a.UserID == "" {
		return NewValidationDomainError("user ID is required")
	}
	if a.QuestionID == "" {
		return NewValidationDomainError("question ID is required")
	}
	return nil
}

// Text returns the free-text content of the answer, empty for choice answers.
func (a *Answer) Text() string {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Text
}

func isEmptyRawPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`:
		return true
	}
	if trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err == nil && len(obj) == 0 {
			return true
		}
	}
	return false
}

// NormalizeAnswerPayload checks a raw answer body against the question's
// type contract and normalizes the accepted shapes:
//
//	text:          "..." or {"text": "..."}       -> {"text": "..."}
//	single_choice: "<option_id>" or {"option": x}  -> {"option": x}
//	multi_choice:  [ids] or {"options": [ids]}     -> {"options": [ids]}
//
// Option references must belong to the question. A required question rejects
// an empty body; an optional question returns (nil, nil) for one.
func NormalizeAnswerPayload(q *Question, raw json.RawMessage) (*AnswerPayload, error) {
	if isEmptyRawPayload(raw) {
		if q.Required {
			return nil, ValidationErrors{{Field: "answer", Message: "This question is required."}}
		}
		return nil, nil
	}

	var payload *AnswerPayload
	var err error
	switch q.Type {
	case QuestionTypeText:
		payload, err = normalizeTextPayload(raw)
	case QuestionTypeSingleChoice:
		payload, err = normalizeSingleChoicePayload(q, raw)
	case QuestionTypeMultiChoice:
		payload, err = normalizeMultiChoicePayload(q, raw)
	default:
		return nil, NewValidationDomainError(fmt.Sprintf("unsupported question type: %s", q.Type))
	}
	if err != nil {
		return nil, err
	}

	// A body like {"text": ""} is well-formed but carries no answer; it is
	// treated exactly like an empty body.
	if payload.IsEmpty() {
		if q.Required {
			return nil, ValidationErrors{{Field: "answer", Message: "This question is required."}}
		}
		return nil, nil
	}
	return payload, nil
}

func normalizeTextPayload(raw json.RawMessage) (*AnswerPayload, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &AnswerPayload{Text: asString}, nil
	}

	var asObject struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Text != nil {
		return &AnswerPayload{Text: *asObject.Text}, nil
	}

	return nil, ValidationErrors{{
		Field:   "answer",
		Message: `For a text question, use {"text": "your answer"} or a raw string.`,
	}}
}

func normalizeSingleChoicePayload(q *Question, raw json.RawMessage) (*AnswerPayload, error) {
	var optionID string

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		optionID = asString
	} else {
		var asObject struct {
			Option *string `json:"option"`
		}
		if err := json.Unmarshal(raw, &asObject); err != nil || asObject.Option == nil {
			return nil, ValidationErrors{{
				Field:   "answer",
				Message: `For a single_choice question, use {"option": "<option_id>"}.`,
			}}
		}
		optionID = *asObject.Option
	}

	if !q.HasOption(optionID) {
		return nil, ValidationErrors{{
			Field:   "answer",
			Message: fmt.Sprintf("Option %s is not valid for this question.", optionID),
			Value:   optionID,
		}}
	}
	return &AnswerPayload{OptionID: optionID}, nil
}

func normalizeMultiChoicePayload(q *Question, raw json.RawMessage) (*AnswerPayload, error) {
	var optionIDs []string

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		optionIDs = asList
	} else {
		var asObject struct {
			Options []string `json:"options"`
		}
		if err := json.Unmarshal(raw, &asObject); err != nil || asObject.Options == nil {
			return nil, ValidationErrors{{
				Field:   "answer",
				Message: `For a multi_choice question, use {"options": ["<option_id>", ...]}.`,
			}}
		}
		optionIDs = asObject.Options
	}

	if len(optionIDs) == 0 {
		return nil, ValidationErrors{{
			Field:   "answer",
			Message: "At least one option is required.",
		}}
	}
	for _, id := range optionIDs {
		if !q.HasOption(id) {
			return nil, ValidationErrors{{
				Field:   "answer",
				Message: "One or more option ids are invalid for this question.",
				Value:   id,
			}}
		}
	}
	return &AnswerPayload{OptionIDs: optionIDs}, nil
}
