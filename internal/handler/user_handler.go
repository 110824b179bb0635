package handler

import (
	"errors"

	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService   service.UserService
	answerService service.AnswerService
}

func NewUserHandler(userService service.UserService, answerService service.AnswerService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		answerService: answerService,
	}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Description Retrieves the profile information of the logged-in user.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.UserProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	profile, err := h.userService.GetUserProfile(c.Context(), userID)
	switch {
	case errors.Is(err, service.ErrUserProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(middleware.ErrorResponse{
			Code: "USER_PROFILE_NOT_FOUND", Message: err.Error(), Status: fiber.StatusNotFound,
		})
	case err != nil:
		logger.Get().Error("Failed to get user profile", zap.String("userID", userID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(middleware.ErrorResponse{
			Code: "GET_PROFILE_FAILED", Message: "Failed to retrieve user profile", Status: fiber.StatusInternalServerError,
		})
	}
	return c.JSON(profile)
}

// parsePagination reads page-style list parameters. Offset is derived from
// the page number so callers can use either convention downstream.
func parsePagination(c *fiber.Ctx) dto.Pagination {
	limit := c.QueryInt("limit", 10)
	page := c.QueryInt("page", 1)
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	return dto.Pagination{Limit: limit, Offset: (page - 1) * limit, Page: page}
}

// GetMyAnswers retrieves the answer history of the authenticated user.
// @Summary Get My Answers
// @Description Retrieves a paginated list of the logged-in user's answers, newest first.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Number of items per page (default 10)"
// @Param page query int false "Page number (default 1)"
// @Success 200 {object} dto.MyAnswersResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/me/answers [get]
func (h *UserHandler) GetMyAnswers(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	pagination := parsePagination(c)
	response, err := h.answerService.ListMyAnswers(c.Context(), userID, pagination)
	if err != nil {
		logger.Get().Error("Failed to get user answers", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(response)
}
