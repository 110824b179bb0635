package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"self-analysis/internal/domain"
)

func scoringRequest() domain.ScoringRequest {
	return domain.ScoringRequest{
		QuestionText: "Tell us about a time you disagreed with a teammate.",
		AnswerText:   "I pushed back on a risky deploy and we agreed to stage it first.",
	}
}

func TestLLMTraitScorer_ScoreTraits(t *testing.T) {
	ctx := context.Background()
	req := scoringRequest()

	t.Run("parses a trait assessment", func(t *testing.T) {
		stub := &stubModel{response: `{
			"positive": {"assertiveness": 80, "prudence": 75},
			"negative": {"stubbornness": 35},
			"quote": "I pushed back on a risky deploy."
		}`}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, assessment)
		assert.Equal(t, domain.TraitScores{"assertiveness": 80, "prudence": 75}, assessment.Positive)
		assert.Equal(t, domain.TraitScores{"stubbornness": 35}, assessment.Negative)
		assert.Equal(t, "I pushed back on a risky deploy.", assessment.Quote)
	})

	t.Run("returns scores unsanitized", func(t *testing.T) {
		longQuote := strings.Repeat("a", 200)
		stub := &stubModel{response: `{"positive": {"confidence": 140}, "negative": {}, "quote": "` + longQuote + `"}`}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(140), assessment.Positive["confidence"])
		assert.Len(t, assessment.Quote, 200)
	})

	t.Run("parses an assessment behind a reasoning preamble", func(t *testing.T) {
		stub := &stubModel{response: "<think>assertive but collaborative</think>\n{\"positive\": {\"assertiveness\": 70}, \"negative\": {}, \"quote\": \"\"}"}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(70), assessment.Positive["assertiveness"])
	})

	t.Run("non-numeric score coerces to zero without dropping the rest", func(t *testing.T) {
		stub := &stubModel{response: `{"positive": {"focus": "high", "grit": 70}, "negative": {}, "quote": ""}`}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, float64(0), assessment.Positive["focus"])
		assert.Equal(t, float64(70), assessment.Positive["grit"])
	})

	t.Run("fails when the response has no JSON object", func(t *testing.T) {
		stub := &stubModel{response: "I cannot score this answer"}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.Error(t, err)
		assert.Nil(t, assessment)
		assert.Contains(t, err.Error(), "no JSON object found in LLM response")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeAssessmentServiceError, domainErr.Code)
	})

	t.Run("fails when the JSON cannot be unmarshaled", func(t *testing.T) {
		stub := &stubModel{response: `{"positive": "not a map"}`}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		assessment, err := scorer.ScoreTraits(ctx, req)
		require.Error(t, err)
		assert.Nil(t, assessment)
		assert.Contains(t, err.Error(), "failed to unmarshal LLM response")
	})

	t.Run("surfaces an LLM failure as an assessment service error", func(t *testing.T) {
		stub := &stubModel{err: errors.New("model overloaded")}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		_, err := scorer.ScoreTraits(ctx, req)
		require.Error(t, err)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeAssessmentServiceError, domainErr.Code)
	})

	t.Run("prompt carries the question and the answer", func(t *testing.T) {
		stub := &stubModel{response: `{"positive": {}, "negative": {}, "quote": ""}`}
		scorer := NewLLMTraitScorer(stub, 5*time.Second)

		_, err := scorer.ScoreTraits(ctx, req)
		require.NoError(t, err)
		require.Len(t, stub.prompts, 1)
		assert.Contains(t, stub.prompts[0], req.QuestionText)
		assert.Contains(t, stub.prompts[0], req.AnswerText)
		assert.Contains(t, stub.prompts[0], `"quote"`)
	})
}
