package handler

import (
	"self-analysis/internal/logger"
	"self-analysis/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalysisHandler handles self-analysis HTTP requests
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Me godoc
// @Summary Get my self-analysis
// @Description Returns the user's aggregated trait profile. The aggregate is created on first read if it does not exist yet.
// @Tags self-analysis
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SelfAnalysisResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /self-analysis/me [get]
func (h *AnalysisHandler) Me(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	analysis, err := h.analysisService.GetMyAnalysis(c.Context(), userID)
	if err != nil {
		logger.Get().Error("Failed to get self-analysis", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(analysis)
}

// Recalculate godoc
// @Summary Recalculate my self-analysis
// @Description Rebuilds the aggregated trait profile from the stored answers. Useful after a failed recomputation left the aggregate stale.
// @Tags self-analysis
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.SelfAnalysisResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /self-analysis/recalc [post]
func (h *AnalysisHandler) Recalculate(c *fiber.Ctx) error {
	appLogger := logger.Get()
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	appLogger.Info("Explicit self-analysis recalculation requested", zap.String("userID", userID))

	analysis, err := h.analysisService.Recalculate(c.Context(), userID)
	if err != nil {
		appLogger.Error("Failed to recalculate self-analysis", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(analysis)
}

// Overview godoc
// @Summary Get my self-analysis overview
// @Description Returns the aggregated profile together with questionnaire progress and the strongest traits of each polarity.
// @Tags self-analysis
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.AnalysisOverviewResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /self-analysis/overview [get]
func (h *AnalysisHandler) Overview(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	overview, err := h.analysisService.GetOverview(c.Context(), userID)
	if err != nil {
		logger.Get().Error("Failed to build analysis overview", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return c.JSON(overview)
}
