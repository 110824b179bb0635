package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"self-analysis/internal/config"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/middleware"
	"self-analysis/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	oauthStateCookieName = "oauthstate"
	oauthStateTTL        = 10 * time.Minute
)

type AuthHandler struct {
	authService service.AuthService
	appConfig   *config.Config
}

func NewAuthHandler(authService service.AuthService, appConfig *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		appConfig:   appConfig,
	}
}

// newOAuthState returns a random URL-safe state string for CSRF protection.
func newOAuthState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func setStateCookie(c *fiber.Ctx, state string) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(oauthStateTTL),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
}

func clearStateCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
}

func oauthError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(middleware.ErrorResponse{
		Code: code, Message: message, Status: status,
	})
}

// GoogleLogin initiates the Google OAuth2 login flow.
// @Summary Initiate Google Login
// @Description Redirects the user to Google's OAuth2 consent page.
// @Tags auth
// @Success 302 {string} string "Redirects to Google"
// @Router /auth/google/login [get]
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := newOAuthState()
	if err != nil {
		logger.Get().Error("Failed to generate random state for OAuth", zap.Error(err))
		return oauthError(c, fiber.StatusInternalServerError,
			"OAUTH_STATE_GENERATION_ERROR", "Could not generate state for OAuth flow")
	}
	setStateCookie(c, state)

	logger.Get().Info("Google login process initiated", zap.String("state", state))
	return c.Redirect(h.authService.GetGoogleLoginURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow and issues the JWT pair.
// @Summary Google OAuth2 Callback
// @Description Handles user authentication after Google login, issues JWTs.
// @Tags auth
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State string for CSRF protection"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid state or code"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	appLogger := logger.Get()
	code := c.Query("code")
	receivedState := c.Query("state")
	expectedState := c.Cookies(oauthStateCookieName)

	// The state cookie is single-use regardless of outcome.
	clearStateCookie(c)

	if code == "" {
		appLogger.Warn("Authorization code missing in Google OAuth callback")
		return oauthError(c, fiber.StatusBadRequest, "MISSING_CODE", "Authorization code is missing")
	}
	if receivedState == "" || expectedState == "" || receivedState != expectedState {
		appLogger.Warn("OAuth state mismatch",
			zap.String("received", receivedState), zap.String("expected", expectedState))
		return oauthError(c, fiber.StatusBadRequest, "INVALID_STATE", "OAuth state mismatch or missing")
	}

	accessToken, refreshToken, user, err := h.authService.HandleGoogleCallback(c.Context(), code, receivedState, expectedState)
	if err != nil {
		appLogger.Error("Failed to handle Google callback", zap.Error(err))
		if errors.Is(err, service.ErrInvalidAuthState) || errors.Is(err, service.ErrFailedToExchangeToken) {
			return oauthError(c, fiber.StatusBadRequest, "OAUTH_CALLBACK_ERROR", err.Error())
		}
		return oauthError(c, fiber.StatusInternalServerError,
			"OAUTH_PROCESSING_ERROR", "Error processing Google login")
	}

	if user != nil {
		appLogger.Info("Google OAuth callback successful, tokens issued", zap.String("userID", user.ID))
	}

	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// @Summary Refresh JWT tokens
// @Description Provides a new access token and a new refresh token if the provided refresh token is valid.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "JSON object with 'refresh_token'"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse "Refresh token missing or invalid format"
// @Failure 401 {object} middleware.ErrorResponse "Refresh token invalid or expired"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	appLogger := logger.Get()
	var reqBody dto.RefreshTokenRequest
	if err := c.BodyParser(&reqBody); err != nil {
		appLogger.Warn("Failed to parse request body for token refresh", zap.Error(err))
		return oauthError(c, fiber.StatusBadRequest, "INVALID_REQUEST_BODY", "Invalid request body")
	}
	if reqBody.RefreshToken == "" {
		return oauthError(c, fiber.StatusBadRequest,
			"MISSING_REFRESH_TOKEN", "Refresh token is missing in request body")
	}

	newAccessToken, newRefreshToken, err := h.authService.RefreshToken(c.Context(), reqBody.RefreshToken)
	if err != nil {
		appLogger.Warn("Token refresh rejected", zap.Error(err))
		return oauthError(c, fiber.StatusUnauthorized,
			"INVALID_REFRESH_TOKEN", "Failed to refresh token: "+err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(dto.TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	})
}

// Logout clears the user's stored OAuth tokens. The JWTs themselves stay
// valid until expiry; clients are expected to discard them.
// @Summary Logout user
// @Description Clears the stored Google OAuth tokens of the authenticated user.
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	if err := h.authService.Logout(c.Context(), userID); err != nil {
		logger.Get().Error("Failed to log out user", zap.String("userID", userID), zap.Error(err))
		return err
	}

	logger.Get().Info("User logged out", zap.String("userID", userID))
	return c.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: "Logout successful. Please discard your tokens."})
}
