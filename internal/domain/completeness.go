package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Minimum substance required from a free-text answer before the assessment
// capability is consulted.
const (
	MinTextWords = 5
	MinTextChars = 30
)

// CompletenessVerdict is the outcome of the completeness check, either from
// the local pre-checks or from the assessment capability.
type CompletenessVerdict struct {
	IsOK         bool   `json:"is_answer_ok"`
	Instructions string `json:"instructions,omitempty"`
}

var placeholderAnswers = map[string]bool{
	"n/a":     true,
	"na":      true,
	"none":    true,
	"nothing": true,
	"yes":     true,
	"no":      true,
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}

var relativeTimePhrases = []string{
	"last year", "this year", "last month", "this month",
	"yesterday", "last week", "recently",
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// QuestionPromptPayload renders a question the way both capabilities see it.
// The bracket prefix lets prompts stay self-describing without a second
// metadata argument.
func QuestionPromptPayload(q *Question) string {
	category := ""
	if q.Category != nil {
		category = *q.Category
	}
	return fmt.Sprintf("[type=%s; required=%t; category=%s] %s", q.Type, q.Required, category, q.Text)
}

// QuestionDemandsTime reports whether the rendered question asks for a point
// in time, in which case the answer must carry a recognizable time reference.
func QuestionDemandsTime(promptPayload string) bool {
	p := strings.ToLower(promptPayload)
	if strings.Contains(p, "when did it take place") {
		return true
	}
	return strings.HasPrefix(p, "[type=text") && strings.Contains(p, " when ")
}

// ContainsTimeReference recognizes month names, 4-digit years in [1900,2099]
// and common relative phrases.
func ContainsTimeReference(text string) bool {
	t := strings.ToLower(text)
	for _, m := range monthNames {
		if strings.Contains(t, m) {
			return true
		}
	}
	if yearPattern.MatchString(t) {
		return true
	}
	for _, p := range relativeTimePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// PassesMinLength requires at least MinTextChars characters and MinTextWords
// whitespace-separated words.
func PassesMinLength(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextChars && wordCount(text) >= MinTextWords
}

// LooksPlaceholder catches throwaway answers: known placeholder tokens and
// anything two characters or shorter.
func LooksPlaceholder(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return placeholderAnswers[t] || len(t) <= 2
}

func containsURL(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "http://") || strings.Contains(t, "https://")
}

// CheckTextLocally runs the cheap completeness pre-checks in a fixed order,
// returning the first failing verdict or nil if the answer may proceed to
// the assessment capability. Keeping these local saves a capability call for
// answers that could never pass.
func CheckTextLocally(q *Question, answerText string) *CompletenessVerdict {
	if !PassesMinLength(answerText) {
		return &CompletenessVerdict{
			IsOK: false,
			Instructions: fmt.Sprintf(
				"Please expand your answer to at least %d words and %d characters, adding specifics (when/where, your role, concrete outcome).",
				MinTextWords, MinTextChars),
		}
	}
	if LooksPlaceholder(answerText) {
		return &CompletenessVerdict{
			IsOK:         false,
			Instructions: "Avoid placeholders like 'N/A' or one-word replies. Share specific details.",
		}
	}
	if QuestionDemandsTime(QuestionPromptPayload(q)) && !ContainsTimeReference(answerText) {
		return &CompletenessVerdict{
			IsOK:         false,
			Instructions: "Mention when it happened (month/year, season, or timeframe).",
		}
	}
	if containsURL(answerText) {
		return &CompletenessVerdict{
			IsOK:         false,
			Instructions: "Please summarize in your own words instead of linking.",
		}
	}
	return nil
}
