package handler

import (
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/service"
	"self-analysis/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnswerHandler handles answer submission and history HTTP requests
type AnswerHandler struct {
	answerService   service.AnswerService
	questionService service.QuestionService
	validator       *validation.Validator
}

// NewAnswerHandler creates a new AnswerHandler instance
func NewAnswerHandler(answerService service.AnswerService, questionService service.QuestionService) *AnswerHandler {
	return &AnswerHandler{
		answerService:   answerService,
		questionService: questionService,
		validator:       validation.NewValidator(),
	}
}

// requireUserID resolves the authenticated user or writes a 401. The second
// return value reports whether the handler may proceed.
func requireUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		logger.Get().Warn("User ID not found in context", zap.String("path", c.Path()))
		return "", false
	}
	return userID, true
}

func unauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(middleware.ErrorResponse{
		Code: "INVALID_USER_CONTEXT", Message: "User ID not found in context", Status: fiber.StatusUnauthorized,
	})
}

// SubmitAndNext godoc
// @Summary Answer a question and get the next one
// @Description Validates and stores the answer, scores text answers into trait values, refreshes the user's self-analysis, and returns the next eligible question. Resubmitting a question overwrites the previous answer.
// @Tags answers
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.SubmitAnswerRequest true "Answer submission"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} dto.RejectionResponse "Text answer rejected as incomplete"
// @Failure 400 {object} middleware.ValidationErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Question not found"
// @Failure 503 {object} middleware.ErrorResponse "Assessment capability unavailable"
// @Router /answers/answer-and-next [post]
func (h *AnswerHandler) SubmitAndNext(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		appLogger.Warn("Failed to parse answer submission", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(middleware.ErrorResponse{
			Code: "INVALID_REQUEST_BODY", Message: "Invalid request body", Status: fiber.StatusBadRequest,
		})
	}

	if errs := h.validator.ValidateSubmitAnswerRequest(req.QuestionID, req.Answer); len(errs) > 0 {
		return errs
	}

	appLogger.Info("Answer submission received",
		zap.String("userID", userID),
		zap.String("questionID", req.QuestionID))

	result, err := h.answerService.SubmitAnswer(c.Context(), userID, &req)
	if err != nil {
		appLogger.Warn("Answer submission failed",
			zap.String("userID", userID),
			zap.String("questionID", req.QuestionID),
			zap.Error(err))
		return err
	}
	return c.JSON(result)
}

// ListMine godoc
// @Summary List my answers
// @Description Returns the authenticated user's answers, newest first.
// @Tags answers
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Number of items per page (default 10, max 100)"
// @Param offset query int false "Number of items to skip"
// @Param page query int false "Page number (alternative to offset)"
// @Success 200 {object} dto.MyAnswersResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /answers [get]
func (h *AnswerHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	pagination, ok := c.Locals(middleware.ValidatedPaginationKey).(dto.Pagination)
	if !ok {
		pagination = dto.Pagination{Limit: 10}
	}

	response, err := h.answerService.ListMyAnswers(c.Context(), userID, pagination)
	if err != nil {
		logger.Get().Error("Failed to list answers", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(response)
}

// Next godoc
// @Summary Get the next eligible question
// @Description Returns the first unanswered active question whose parent chain is fully answered, with completion progress.
// @Tags answers
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.NextQuestionResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /answers/next [get]
func (h *AnswerHandler) Next(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	next, err := h.questionService.GetNextQuestion(c.Context(), userID)
	if err != nil {
		logger.Get().Error("Failed to resolve next question", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(next)
}

// Progress godoc
// @Summary Get questionnaire progress
// @Description Returns overall and per-category completion of the questionnaire for the authenticated user.
// @Tags answers
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProgressResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /answers/progress [get]
func (h *AnswerHandler) Progress(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	progress, err := h.questionService.GetProgress(c.Context(), userID)
	if err != nil {
		logger.Get().Error("Failed to compute progress", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(progress)
}

// Delete godoc
// @Summary Delete one of my answers
// @Description Removes the answer and recalculates the self-analysis without it. Only the answer's owner may delete it.
// @Tags answers
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Answer ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Answer not found"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /answers/{id} [delete]
func (h *AnswerHandler) Delete(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	answerID, ok := c.Locals(middleware.ValidatedAnswerIDKey).(string)
	if !ok {
		answerID = c.Params("id")
	}

	if err := h.answerService.DeleteAnswer(c.Context(), userID, answerID); err != nil {
		appLogger.Warn("Failed to delete answer",
			zap.String("userID", userID),
			zap.String("answerID", answerID),
			zap.Error(err))
		return err
	}

	appLogger.Info("Answer deleted", zap.String("userID", userID), zap.String("answerID", answerID))
	return c.JSON(dto.MessageResponse{Message: "Answer deleted."})
}
