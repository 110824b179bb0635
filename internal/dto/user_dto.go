package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// GoogleUserInfo mirrors the payload of Google's userinfo endpoint.
// Only ID, Email, Name and Picture are consumed; the rest is decoded
// for completeness.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// AuthClaims is the JWT claim set issued by the auth service. TokenType
// distinguishes access tokens from refresh tokens.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserProfileResponse is the public view of a user account.
type UserProfileResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Name              string `json:"name,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// TokenResponse carries a freshly issued JWT pair.
// @Description Response body for authentication tokens
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest asks for a new token pair using a refresh token.
// @Description Request body for refreshing JWT tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MessageResponse is the generic acknowledgement envelope.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// Pagination holds the list query parameters shared by paginated endpoints.
// Page is an alternative to Offset; the validation middleware resolves it.
type Pagination struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
	Page   int `query:"page"`
}

// PaginationInfo describes the page window of a list response.
type PaginationInfo struct {
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
}
