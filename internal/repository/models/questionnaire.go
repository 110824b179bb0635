package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TraitScoreMap is a custom type for persisting trait score maps as JSON in a CLOB column.
type TraitScoreMap map[string]float64

// Value implements the driver.Valuer interface
func (m TraitScoreMap) Value() (driver.Value, error) {
	if m == nil {
		// nil 맵인 경우 DB에 빈 JSON 객체 문자열 "{}"로 저장
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil // []byte 대신 string 반환
}

// Scan implements the sql.Scanner interface
func (m *TraitScoreMap) Scan(value interface{}) error {
	if value == nil {
		*m = TraitScoreMap{} // DB NULL은 빈 맵으로
		return nil
	}

	var bytesToParse []byte

	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("TraitScoreMap Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 {
		*m = TraitScoreMap{} // DB 빈 문자열은 빈 맵으로
		return nil
	}
	if string(bytesToParse) == "null" {
		*m = TraitScoreMap{}
		return nil
	}

	return json.Unmarshal(bytesToParse, m)
}

// Question represents a questionnaire question row.
type Question struct {
	ID           string         `db:"id"`            // ULID
	QuestionText string         `db:"question_text"` // Question wording shown to the user
	QuestionType string         `db:"question_type"` // text, single_choice or multi_choice
	ParentID     sql.NullString `db:"parent_id"`     // Gating parent, NULL for root questions
	Category     sql.NullString `db:"category"`      // Free-form grouping key
	Required     bool           `db:"required"`      // Whether an empty submission is rejected
	IsActive     bool           `db:"is_active"`     // Inactive questions are hidden and never eligible
	DisplayOrder int            `db:"display_order"` // Primary sort key, ties broken by id
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	DeletedAt    sql.NullTime   `db:"deleted_at"`
}

// QuestionOption represents a selectable option of a choice question.
type QuestionOption struct {
	ID           string       `db:"id"`           // ULID
	QuestionID   string       `db:"question_id"`  // Owning question
	Label        string       `db:"label"`        // Text shown to the user
	OptionValue  string       `db:"option_value"` // Stored value, defaults to the label
	DisplayOrder int          `db:"display_order"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	DeletedAt    sql.NullTime `db:"deleted_at"`
}

// Trait represents a personality trait row.
type Trait struct {
	ID          string         `db:"id"`       // ULID
	Name        string         `db:"name"`     // Unique trait key used in score maps
	Polarity    string         `db:"polarity"` // positive or negative
	Description sql.NullString `db:"description"`
	IsActive    bool           `db:"is_active"`
	MinValue    int            `db:"min_value"`
	MaxValue    int            `db:"max_value"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

// Answer represents a user's stored answer to a question.
// Rows are unique per (user_id, question_id); resubmissions replace in place.
type Answer struct {
	ID             string         `db:"id"`              // ULID, stable across resubmissions
	UserID         string         `db:"user_id"`         // Foreign key to users table
	QuestionID     string         `db:"question_id"`     // Foreign key to questions table
	Payload        sql.NullString `db:"payload"`         // Normalized answer payload as JSON
	PositiveValues TraitScoreMap  `db:"positive_values"` // Per-answer positive trait scores as JSON
	NegativeValues TraitScoreMap  `db:"negative_values"` // Per-answer negative trait scores as JSON
	Quote          sql.NullString `db:"quote"`           // Representative quote, at most 140 characters
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// SelfAnalysis represents the aggregated trait profile of a user.
// There is at most one row per user.
type SelfAnalysis struct {
	ID                string         `db:"id"`                 // ULID
	UserID            string         `db:"user_id"`            // Unique owner
	CombinedPositives TraitScoreMap  `db:"combined_positives"` // Mean positive scores as JSON
	CombinedNegatives TraitScoreMap  `db:"combined_negatives"` // Mean negative scores as JSON
	Quote             sql.NullString `db:"quote"`              // Representative quote carried from answers
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}
