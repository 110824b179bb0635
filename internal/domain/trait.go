package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Polarity marks whether a trait counts for or against the user.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

func (p Polarity) IsValid() bool {
	return p == PolarityPositive || p == PolarityNegative
}

// Trait is catalog reference data. Score maps are free-form string keys; a
// Trait row, when one matches a key, adds an optional validation overlay
// (active flag, polarity, tighter bounds). A key without a catalog row is
// still valid.
type Trait struct {
	ID          string
	Name        string
	Polarity    Polarity
	Description string
	IsActive    bool
	MinValue    float64
	MaxValue    float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTrait creates a new Trait instance with the default [0,100] bounds.
func NewTrait(name string, polarity Polarity, description string) *Trait {
	now := time.Now()
	return &Trait{
		Name:        name,
		Polarity:    polarity,
		Description: description,
		IsActive:    true,
		MinValue:    0,
		MaxValue:    100,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the trait
func (t *Trait) Validate() error {
	if t.Name == "" {
		return NewValidationDomainError("name is required")
	}
	if !t.Polarity.IsValid() {
		return NewValidationDomainError("polarity must be positive or negative")
	}
	if t.MinValue > t.MaxValue {
		return NewValidationDomainError("min value must not exceed max value")
	}
	return nil
}

// TraitScores maps trait names to scores. Keys are whatever the scoring
// capability produced; values are kept in [0,100].
type TraitScores map[string]float64

// UnmarshalJSON decodes a score map without letting one malformed value sink
// the rest. Numeric strings like "70" are read as numbers; anything else
// non-numeric coerces to 0.
func (s *TraitScores) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	scores := make(TraitScores, len(raw))
	for name, value := range raw {
		var num float64
		if err := json.Unmarshal(value, &num); err == nil {
			scores[name] = num
			continue
		}
		var str string
		if err := json.Unmarshal(value, &str); err == nil {
			if parsed, errParse := strconv.ParseFloat(strings.TrimSpace(str), 64); errParse == nil {
				scores[name] = parsed
				continue
			}
		}
		scores[name] = 0
	}
	*s = scores
	return nil
}

// ClampScore coerces a raw capability score into an integer in [0,100].
// Values are rounded half away from zero. Clamping happens in float space;
// NaN and infinities never reach the int conversion.
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

// MaxQuoteLength bounds the quote carried on answers and aggregates.
const MaxQuoteLength = 140

// NormalizeQuote truncates a capability quote to MaxQuoteLength runes and
// trims surrounding whitespace, in that order.
func NormalizeQuote(quote string) string {
	if runes := []rune(quote); len(runes) > MaxQuoteLength {
		quote = string(runes[:MaxQuoteLength])
	}
	return strings.TrimSpace(quote)
}

// SanitizeScores applies ClampScore to every entry of a score map. The
// scoring capability is not trusted to respect numeric bounds.
func SanitizeScores(scores TraitScores) TraitScores {
	cleaned := make(TraitScores, len(scores))
	for k, v := range scores {
		cleaned[k] = float64(ClampScore(v))
	}
	return cleaned
}
