package handler

import (
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuestionHandler handles question catalog HTTP requests
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler instance
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
	}
}

// authenticatedUserID returns the user ID resolved by the auth middleware, or
// "" when the request is anonymous.
func authenticatedUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals(middleware.UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// List godoc
// @Summary List questions
// @Description Returns the question catalog in display order. Filters by category or parent; the literal "null" selects uncategorized or root questions. Inactive questions appear only for authenticated callers requesting them.
// @Tags questions
// @Produce json
// @Param category query string false "Category key, or 'null' for uncategorized"
// @Param parent_id query string false "Parent question ID, or 'null' for root questions"
// @Param include_inactive query bool false "Include inactive questions (authenticated only)"
// @Success 200 {array} dto.QuestionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /questions [get]
func (h *QuestionHandler) List(c *fiber.Ctx) error {
	var filters dto.QuestionFilters
	if err := c.QueryParser(&filters); err != nil {
		logger.Get().Warn("Failed to parse question filters", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_QUERY", Message: "Invalid query parameters", Status: fiber.StatusBadRequest,
		})
	}

	// Anonymous callers only ever see the active catalog.
	if filters.IncludeInactive && authenticatedUserID(c) == "" {
		filters.IncludeInactive = false
	}

	questions, err := h.questionService.ListQuestions(c.Context(), filters)
	if err != nil {
		logger.Get().Error("Failed to list questions", zap.Error(err))
		return err
	}
	return c.JSON(questions)
}

// Get godoc
// @Summary Get a question
// @Description Returns a single question with its options. Inactive questions are visible only to authenticated callers passing include_inactive.
// @Tags questions
// @Produce json
// @Param id path string true "Question ID"
// @Param include_inactive query bool false "Allow an inactive question (authenticated only)"
// @Success 200 {object} dto.QuestionResponse
// @Failure 404 {object} middleware.ErrorResponse "Question not found"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")

	includeInactive := c.QueryBool("include_inactive") && authenticatedUserID(c) != ""

	question, err := h.questionService.GetQuestion(c.Context(), id, includeInactive)
	if err != nil {
		logger.Get().Warn("Failed to get question", zap.String("questionID", id), zap.Error(err))
		return err
	}
	return c.JSON(question)
}
