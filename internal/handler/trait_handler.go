package handler

import (
	"strings"

	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/service"
	"self-analysis/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TraitHandler handles trait catalog HTTP requests
type TraitHandler struct {
	traitService service.TraitService
	validator    *validation.Validator
}

// NewTraitHandler creates a new TraitHandler instance
func NewTraitHandler(traitService service.TraitService) *TraitHandler {
	return &TraitHandler{
		traitService: traitService,
		validator:    validation.NewValidator(),
	}
}

// List godoc
// @Summary List traits
// @Description Returns the trait catalog ordered by name, optionally filtered by polarity. Only active traits are returned unless include_inactive is set.
// @Tags traits
// @Produce json
// @Param polarity query string false "Filter by polarity: positive or negative"
// @Param include_inactive query bool false "Include inactive traits"
// @Success 200 {array} dto.TraitResponse
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid polarity"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /traits [get]
func (h *TraitHandler) List(c *fiber.Ctx) error {
	var filters dto.TraitFilters
	if err := c.QueryParser(&filters); err != nil {
		logger.Get().Warn("Failed to parse trait filters", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_QUERY", Message: "Invalid query parameters", Status: fiber.StatusBadRequest,
		})
	}

	if errs := h.validator.ValidatePolarity(filters.Polarity); len(errs) > 0 {
		return errs
	}
	filters.Polarity = strings.ToLower(filters.Polarity)

	traits, err := h.traitService.ListTraits(c.Context(), filters)
	if err != nil {
		logger.Get().Error("Failed to list traits", zap.Error(err))
		return err
	}
	return c.JSON(traits)
}
