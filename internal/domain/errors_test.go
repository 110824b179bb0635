package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		err := NewNotFoundError("nothing here")
		if err.Error() != "nothing here" {
			t.Errorf("Error() = %q", err.Error())
		}
		if err.Code != CodeNotFound {
			t.Errorf("Code = %s", err.Code)
		}
	})

	t.Run("wraps its cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewInternalError("database unavailable", cause)
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the cause")
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("context shows up in JSON but cause does not", func(t *testing.T) {
		err := NewQuestionNotFoundError("01ABC").WithContext("question_id", "01ABC")
		err.Cause = errors.New("secret internals")

		raw, marshalErr := json.Marshal(err)
		if marshalErr != nil {
			t.Fatalf("marshal: %v", marshalErr)
		}
		body := string(raw)
		if !strings.Contains(body, `"question_id":"01ABC"`) {
			t.Errorf("context missing from %s", body)
		}
		if strings.Contains(body, "secret internals") {
			t.Errorf("cause leaked into %s", body)
		}
	})

	t.Run("constructors set the right codes", func(t *testing.T) {
		tests := []struct {
			err  *DomainError
			code ErrorCode
		}{
			{NewQuestionNotFoundError("q"), CodeQuestionNotFound},
			{NewAnswerNotFoundError("a"), CodeAnswerNotFound},
			{NewInvalidAnswerError("bad"), CodeInvalidAnswer},
			{NewAssessmentServiceError(nil), CodeAssessmentServiceError},
			{NewAggregationError("u", nil), CodeAggregationError},
			{NewUnauthorizedError("no"), CodeUnauthorized},
			{NewValidationDomainError("bad entity"), CodeValidation},
		}
		for _, tt := range tests {
			if tt.err.Code != tt.code {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.code)
			}
		}
	})
}

func TestAnswerRejectedError(t *testing.T) {
	withVerdict := NewAnswerRejectedError(&CompletenessVerdict{
		IsOK:         false,
		Instructions: "Add when it happened.",
	})
	if withVerdict.Error() != "Add when it happened." {
		t.Errorf("Error() = %q", withVerdict.Error())
	}

	bare := NewAnswerRejectedError(nil)
	if bare.Error() != "answer rejected as incomplete" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestValidationErrors_Error(t *testing.T) {
	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{"empty", ValidationErrors{}, "validation failed"},
		{
			"single",
			ValidationErrors{NewMissingFieldError("question_id")},
			"question_id: This field is required.",
		},
		{
			"several",
			ValidationErrors{
				NewMissingFieldError("question_id"),
				NewOutOfRangeError("limit", 1, 100),
				NewMissingFieldError("answer"),
			},
			"question_id: This field is required. (and 2 more)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.errs.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewOutOfRangeError(t *testing.T) {
	err := NewOutOfRangeError("limit", 1, 100)
	if err.Message != "Must be between 1 and 100." {
		t.Errorf("Message = %q", err.Message)
	}
}
