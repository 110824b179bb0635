package domain

import (
	"math"
	"time"
)

// SelfAnalysis is the per-user aggregate: one row per user, created lazily,
// mutated only by RecalculateFromAnswers. Clients read it, never write it.
type SelfAnalysis struct {
	ID                string
	UserID            string
	CombinedPositives TraitScores
	CombinedNegatives TraitScores
	Quote             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSelfAnalysis creates an empty aggregate for a user.
func NewSelfAnalysis(userID string) *SelfAnalysis {
	now := time.Now()
	return &SelfAnalysis{
		UserID:            userID,
		CombinedPositives: TraitScores{},
		CombinedNegatives: TraitScores{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Validate validates the aggregate
func (s *SelfAnalysis) Validate() error {
	if s.UserID == "" {
		return NewValidationDomainError("user ID is required")
	}
	return nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecalculateFromAnswers rebuilds the combined maps and quote from the full
// answer set. For every trait key the mean is taken over only the answers
// that carry the key: an answer without the key contributes neither value
// nor count. The quote is the first non-empty quote in iteration order;
// repositories hand answers over newest first, so the newest quoted answer
// wins deterministically. Idempotent given the same answers.
func (s *SelfAnalysis) RecalculateFromAnswers(answers []Answer) {
	type acc struct {
		sum   float64
		count int
	}
	posAcc := make(map[string]*acc)
	negAcc := make(map[string]*acc)

	accumulate := func(into map[string]*acc, scores TraitScores) {
		for key, value := range scores {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				continue
			}
			a := into[key]
			if a == nil {
				a = &acc{}
				into[key] = a
			}
			a.sum += value
			a.count++
		}
	}

	latestQuote := ""
	for i := range answers {
		accumulate(posAcc, answers[i].PositiveValues)
		accumulate(negAcc, answers[i].NegativeValues)
		if latestQuote == "" && answers[i].Quote != "" {
			latestQuote = answers[i].Quote
		}
	}

	combined := func(from map[string]*acc) TraitScores {
		out := make(TraitScores, len(from))
		for key, a := range from {
			out[key] = Round2(a.sum / float64(a.count))
		}
		return out
	}

	s.CombinedPositives = combined(posAcc)
	s.CombinedNegatives = combined(negAcc)
	s.Quote = latestQuote
	s.UpdatedAt = time.Now()
}
