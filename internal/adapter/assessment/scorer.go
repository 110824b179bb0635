package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"self-analysis/internal/domain"
	"self-analysis/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// llmTraitScorer implements domain.TraitScorer on top of a langchaingo model.
type llmTraitScorer struct {
	llmClient llms.Model
	timeout   time.Duration
}

// NewLLMTraitScorer creates a new instance of llmTraitScorer.
func NewLLMTraitScorer(llm llms.Model, timeout time.Duration) domain.TraitScorer {
	return &llmTraitScorer{
		llmClient: llm,
		timeout:   timeout,
	}
}

// ScoreTraits implements domain.TraitScorer. It asks the model to name the
// personality traits the answer reveals and score each one; the caller is
// expected to run Sanitize on the result before persisting it.
func (s *llmTraitScorer) ScoreTraits(ctx context.Context, req domain.ScoringRequest) (*domain.TraitAssessment, error) {
	l := logger.Get()
	l.Info("Scoring answer traits with LLM",
		zap.String("question", req.QuestionText))

	prompt := fmt.Sprintf(`You are a personality analyst for a self-assessment questionnaire. Read the question and the user's answer, then respond with ONLY a JSON object in the following format:
{
    "positive": {"trait name": 80},
    "negative": {"trait name": 40},
    "quote": ""
}

Question: %s
User's Answer: %s

Rules:
1. positive holds strengths the answer reveals (for example resilience, empathy, curiosity), negative holds weaknesses or risks (for example impatience, avoidance)
2. Name between 2 and 8 traits under each of positive and negative
3. Every score is an integer between 0 and 100 measuring how strongly the answer shows that trait
4. quote is the single most revealing sentence copied verbatim from the user's answer, at most 140 characters, or an empty string if nothing stands out
5. Derive traits only from what the answer actually says, never from the question alone`, req.QuestionText, req.AnswerText)

	rawResponse, err := callLLM(ctx, s.llmClient, prompt, s.timeout)
	if err != nil {
		l.Error("callLLM failed during trait scoring",
			zap.Error(err),
			zap.String("prompt_part", prompt[:min(200, len(prompt))]))
		return nil, domain.NewAssessmentServiceError(fmt.Errorf("callLLM failed: %w", err))
	}

	l.Debug("Raw LLM response received", zap.String("raw_response", rawResponse))

	extractedJSONStr, found := extractJSONObject(rawResponse)
	if !found {
		l.Error("No JSON object found in scoring response",
			zap.String("raw_response", rawResponse))
		return nil, domain.NewAssessmentServiceError(fmt.Errorf("no JSON object found in LLM response"))
	}

	var assessment domain.TraitAssessment
	if errUnmarshal := json.Unmarshal([]byte(extractedJSONStr), &assessment); errUnmarshal != nil {
		l.Error("Failed to unmarshal trait assessment",
			zap.Error(errUnmarshal),
			zap.String("json_string_tried_to_parse", extractedJSONStr))
		return nil, domain.NewAssessmentServiceError(fmt.Errorf("failed to unmarshal LLM response: %w", errUnmarshal))
	}

	return &assessment, nil
}
