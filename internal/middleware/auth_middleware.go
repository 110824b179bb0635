package middleware

import (
	"fmt"
	"strings"

	"self-analysis/internal/logger"
	"self-analysis/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	bearerSchema    = "Bearer "
	accessTokenType = "access"

	// UserIDKey is the fiber locals key under which handlers find the
	// authenticated user's ID.
	UserIDKey = "userID"
)

// Header extraction failure codes, also used as response codes.
const (
	codeMissingAuthHeader = "MISSING_AUTH_HEADER"
	codeInvalidAuthScheme = "INVALID_AUTH_SCHEME"
	codeEmptyToken        = "EMPTY_TOKEN"
)

var authFailureMessages = map[string]string{
	codeMissingAuthHeader: "Authorization header is missing",
	codeInvalidAuthScheme: "Authorization scheme is not Bearer",
	codeEmptyToken:        "Token is empty",
}

// bearerToken pulls the raw JWT out of the Authorization header. On failure
// it returns an empty token and the failure code.
func bearerToken(c *fiber.Ctx) (string, string) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", codeMissingAuthHeader
	}
	if !strings.HasPrefix(header, bearerSchema) {
		return "", codeInvalidAuthScheme
	}
	token := strings.TrimPrefix(header, bearerSchema)
	if token == "" {
		return "", codeEmptyToken
	}
	return token, ""
}

func unauthorized(c *fiber.Ctx, code string, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Code:    code,
		Message: message,
		Status:  fiber.StatusUnauthorized,
	})
}

// Protected rejects requests that do not carry a valid access token and
// stores the token's user ID in the request locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, failCode := bearerToken(c)
		if failCode != "" {
			return unauthorized(c, failCode, authFailureMessages[failCode])
		}

		claims, err := authService.ValidateJWT(c.Context(), tokenString)
		if err != nil {
			return unauthorized(c, "INVALID_TOKEN", err.Error())
		}
		if claims.TokenType != accessTokenType {
			// Refresh tokens must not open protected routes.
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN_TYPE",
				Message: fmt.Sprintf("Invalid token type: expected access, got %s", claims.TokenType),
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth stores the user ID when a valid access token is present and
// otherwise lets the request through anonymously. Handlers treat a missing
// userID local as an anonymous caller.
func OptionalAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, failCode := bearerToken(c)
		if failCode != "" {
			if failCode != codeMissingAuthHeader {
				logger.Get().Debug("OptionalAuth: malformed Authorization header, proceeding as anonymous",
					zap.String("reason", failCode))
			}
			return c.Next()
		}

		claims, err := authService.ValidateJWT(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("OptionalAuth: JWT validation failed, proceeding as anonymous", zap.Error(err))
			return c.Next()
		}
		if claims.TokenType != accessTokenType {
			logger.Get().Debug("OptionalAuth: not an access token, proceeding as anonymous",
				zap.String("tokenType", claims.TokenType))
			return c.Next()
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}
