package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"self-analysis/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// callLLM sends a single prompt with its own deadline. Both capabilities run
// at low temperature so the JSON envelope stays stable.
func callLLM(ctx context.Context, client llms.Model, prompt string, timeout time.Duration) (string, error) {
	l := logger.Get()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := client.Call(callCtx, prompt, llms.WithTemperature(0.1))
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			l.Error("LLM request timed out", zap.Error(err), zap.Duration("timeout", timeout))
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response, nil
}

// extractJSONObject pulls the outermost JSON object out of a raw model
// response, tolerating reasoning-model <think> preambles and prose around
// the payload. The second return is false when no object delimiters exist.
func extractJSONObject(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):]
			cleaned = strings.TrimSpace(cleaned)
		}
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return cleaned, false
	}
	return cleaned[jsonStart : jsonEnd+1], true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
