package middleware

import (
	"strconv"

	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Locals keys for values the validation middleware has already checked.
const (
	ValidatedAnswerIDKey   = "validated_answer_id"
	ValidatedPaginationKey = "validated_pagination"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateAnswerIDParam validates the :id path parameter of answer routes
func (vm *ValidationMiddleware) ValidateAnswerIDParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		answerID := c.Params("id")

		if errors := vm.validator.ValidateAnswerID(answerID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		// Store validated value in context for handlers to use
		c.Locals(ValidatedAnswerIDKey, answerID)
		return c.Next()
	}
}

// ValidatePaginationQuery validates limit/offset/page query parameters and
// stores the parsed dto.Pagination in context.
func (vm *ValidationMiddleware) ValidatePaginationQuery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, errs := parseQueryInt(c, "limit", 10)
		if errs != nil {
			return errs
		}
		offset, errs := parseQueryInt(c, "offset", 0)
		if errs != nil {
			return errs
		}
		page, errs := parseQueryInt(c, "page", 0)
		if errs != nil {
			return errs
		}

		if errors := vm.validator.ValidatePagination(limit, offset); len(errors) > 0 {
			return errors
		}

		c.Locals(ValidatedPaginationKey, dto.Pagination{Limit: limit, Offset: offset, Page: page})
		return c.Next()
	}
}

// parseQueryInt parses an integer query parameter, falling back to def when
// the parameter is absent.
func parseQueryInt(c *fiber.Ctx, name string, def int) (int, domain.ValidationErrors) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationErrors{
			domain.NewInvalidFormatError(name, "Must be a number.", raw),
		}
	}
	return value, nil
}
