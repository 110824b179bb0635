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

// llmCompletenessValidator implements domain.CompletenessValidator on top of
// a langchaingo model.
type llmCompletenessValidator struct {
	llmClient llms.Model
	timeout   time.Duration
}

// NewLLMCompletenessValidator creates a new instance of llmCompletenessValidator.
func NewLLMCompletenessValidator(llm llms.Model, timeout time.Duration) domain.CompletenessValidator {
	return &llmCompletenessValidator{
		llmClient: llm,
		timeout:   timeout,
	}
}

// CheckCompleteness implements domain.CompletenessValidator. The verdict is
// advisory: a response that cannot be parsed counts as an acceptance, while
// a failed call surfaces as an error so the caller can apply its own
// fail-open policy.
func (v *llmCompletenessValidator) CheckCompleteness(ctx context.Context, req domain.AssessmentRequest) (*domain.CompletenessVerdict, error) {
	l := logger.Get()
	l.Info("Checking answer completeness with LLM",
		zap.String("question", req.QuestionText))

	prompt := fmt.Sprintf(`You are a completeness checker for a self-assessment questionnaire. Judge whether the answer is substantive enough to derive personality traits from, and respond with ONLY a JSON object in the following format:
{
    "is_answer_ok": true,
    "instructions": ""
}

Question: %s
User's Answer: %s

Rules:
1. is_answer_ok is true only when the answer is specific: it should say what happened, the user's role, and a concrete outcome
2. If the question asks when something took place, the answer must name a month, year, season or timeframe
3. Generic claims without any supporting detail are not ok
4. When is_answer_ok is false, instructions must be one or two short sentences telling the user exactly what to add
5. When is_answer_ok is true, instructions must be an empty string`, req.PromptPayload(), req.AnswerText)

	rawResponse, err := callLLM(ctx, v.llmClient, prompt, v.timeout)
	if err != nil {
		l.Error("callLLM failed during completeness check",
			zap.Error(err),
			zap.String("prompt_part", prompt[:min(200, len(prompt))]))
		return nil, domain.NewAssessmentServiceError(fmt.Errorf("callLLM failed: %w", err))
	}

	l.Debug("Raw LLM response received", zap.String("raw_response", rawResponse))

	extractedJSONStr, found := extractJSONObject(rawResponse)
	if !found {
		// The checker is advisory, so an unreadable response never blocks the user.
		l.Warn("No JSON object found in completeness response, accepting answer",
			zap.String("raw_response", rawResponse))
		return &domain.CompletenessVerdict{IsOK: true}, nil
	}

	var verdict domain.CompletenessVerdict
	if errUnmarshal := json.Unmarshal([]byte(extractedJSONStr), &verdict); errUnmarshal != nil {
		l.Warn("Failed to unmarshal completeness verdict, accepting answer",
			zap.Error(errUnmarshal),
			zap.String("json_string_tried_to_parse", extractedJSONStr))
		return &domain.CompletenessVerdict{IsOK: true}, nil
	}

	if verdict.IsOK {
		verdict.Instructions = ""
	}
	return &verdict, nil
}
