package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"self-analysis/internal/config"
	"self-analysis/internal/domain"
	"self-analysis/internal/dto"
	"self-analysis/internal/logger"
	"self-analysis/internal/repository"
	"self-analysis/internal/repository/models"
	"self-analysis/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	tokenTypeAccess   = "access"
	tokenTypeRefresh  = "refresh"
)

var (
	ErrInvalidAuthState      = errors.New("invalid oauth state")
	ErrFailedToExchangeToken = errors.New("failed to exchange oauth token")
	ErrFailedToGetUserInfo   = errors.New("failed to get user info from google")
	ErrInvalidJWTToken       = errors.New("invalid jwt token")
	ErrEncryptionFailed      = errors.New("failed to encrypt token")
	ErrDecryptionFailed      = errors.New("failed to decrypt token")
)

// AuthService handles Google OAuth sign-in and the JWT session lifecycle.
type AuthService interface {
	GetGoogleLoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (accessToken string, refreshToken string, user *models.User, err error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, user *models.User, ttl time.Duration, tokenType string) (string, error)
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, newRefreshToken string, err error)
	Logout(ctx context.Context, userID string) error
	EncryptToken(token string) (string, error)
	DecryptToken(encryptedToken string) (string, error)
}

type authServiceImpl struct {
	userRepo     repository.UserRepository
	oauth2Config *oauth2.Config
	appConfig    *config.Config
	tokenCipher  cipher.AEAD
}

// NewAuthService wires Google OAuth against the user repository. Stored OAuth
// tokens are sealed with AES-256-GCM; the key is derived from the JWT secret,
// so the secret has to carry at least 32 bytes.
func NewAuthService(userRepo repository.UserRepository, appConfig *config.Config) (AuthService, error) {
	if len(appConfig.JWT.SecretKey) < 32 {
		return nil, errors.New("jwt secret must be at least 32 bytes to derive the token encryption key")
	}
	block, err := aes.NewCipher([]byte(appConfig.JWT.SecretKey[:32]))
	if err != nil {
		return nil, fmt.Errorf("token cipher init: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("token cipher init: %w", err)
	}

	return &authServiceImpl{
		userRepo: userRepo,
		oauth2Config: &oauth2.Config{
			ClientID:     appConfig.GoogleOAuth.ClientID,
			ClientSecret: appConfig.GoogleOAuth.ClientSecret,
			RedirectURL:  appConfig.GoogleOAuth.RedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		appConfig:   appConfig,
		tokenCipher: aead,
	}, nil
}

func (s *authServiceImpl) GetGoogleLoginURL(state string) string {
	// Offline access plus forced approval so Google hands out a refresh token.
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (s *authServiceImpl) HandleGoogleCallback(ctx context.Context, code string, receivedState string, expectedState string) (string, string, *models.User, error) {
	if receivedState != expectedState {
		return "", "", nil, ErrInvalidAuthState
	}

	googleToken, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: %v", ErrFailedToExchangeToken, err)
	}

	userInfo, err := s.fetchGoogleProfile(ctx, googleToken)
	if err != nil {
		return "", "", nil, err
	}

	user, err := s.upsertGoogleUser(ctx, userInfo, googleToken)
	if err != nil {
		return "", "", nil, err
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return "", "", nil, err
	}
	return accessToken, refreshToken, user, nil
}

func (s *authServiceImpl) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*dto.GoogleUserInfo, error) {
	resp, err := s.oauth2Config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGetUserInfo, err)
	}
	defer resp.Body.Close()

	var userInfo dto.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if userInfo.ID == "" || userInfo.Email == "" {
		return nil, errors.New("google user info is incomplete")
	}
	return &userInfo, nil
}

// upsertGoogleUser creates the user on first login and refreshes the stored
// profile and OAuth tokens on every later one.
func (s *authServiceImpl) upsertGoogleUser(ctx context.Context, info *dto.GoogleUserInfo, googleToken *oauth2.Token) (*models.User, error) {
	user, err := s.userRepo.GetUserByGoogleID(ctx, info.ID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user by google_id: %w", err)
	}

	encryptedAccess, err := s.EncryptToken(googleToken.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	var encryptedRefresh string
	if googleToken.RefreshToken != "" {
		encryptedRefresh, err = s.EncryptToken(googleToken.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
	}

	now := time.Now()
	if user == nil {
		user = &models.User{
			ID:                    util.NewULID(),
			GoogleID:              info.ID,
			Email:                 info.Email,
			Name:                  util.StringToNullString(info.Name),
			ProfilePictureURL:     util.StringToNullString(info.Picture),
			EncryptedAccessToken:  util.StringToNullString(encryptedAccess),
			EncryptedRefreshToken: util.StringToNullString(encryptedRefresh),
			TokenExpiresAt:        util.TimeToNullTime(googleToken.Expiry),
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if err := s.userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		logger.Get().Info("New user created via Google OAuth",
			zap.String("userID", user.ID), zap.String("email", user.Email))
		return user, nil
	}

	// Google stays the source of truth for profile fields.
	user.Email = info.Email
	user.Name = util.StringToNullString(info.Name)
	user.ProfilePictureURL = util.StringToNullString(info.Picture)
	user.EncryptedAccessToken = util.StringToNullString(encryptedAccess)
	if encryptedRefresh != "" {
		// Google omits the refresh token after the first consent; keep the old one then.
		user.EncryptedRefreshToken = util.StringToNullString(encryptedRefresh)
	}
	user.TokenExpiresAt = util.TimeToNullTime(googleToken.Expiry)
	user.UpdatedAt = now
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	logger.Get().Info("User logged in via Google OAuth",
		zap.String("userID", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *authServiceImpl) issueTokenPair(ctx context.Context, user *models.User) (string, string, error) {
	accessToken, err := s.CreateJWT(ctx, user, s.appConfig.JWT.AccessTokenTTL, tokenTypeAccess)
	if err != nil {
		return "", "", fmt.Errorf("failed to create access token: %w", err)
	}
	refreshToken, err := s.CreateJWT(ctx, user, s.appConfig.JWT.RefreshTokenTTL, tokenTypeRefresh)
	if err != nil {
		return "", "", fmt.Errorf("failed to create refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *models.User, ttl time.Duration, tokenType string) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.appConfig.JWT.SecretKey))
}

// tokenSnippet keeps log lines free of full JWTs.
func tokenSnippet(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.appConfig.JWT.SecretKey), nil
	})
	if err != nil {
		appLogger := logger.Get()
		if errors.Is(err, jwt.ErrTokenExpired) {
			appLogger.Debug("JWT expired", zap.String("tokenSnippet", tokenSnippet(tokenString)))
		} else {
			appLogger.Warn("JWT validation failed",
				zap.Error(err), zap.String("tokenSnippet", tokenSnippet(tokenString)))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshTokenString string) (string, string, error) {
	claims, err := s.ValidateJWT(ctx, refreshTokenString)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims.TokenType != tokenTypeRefresh {
		return "", "", errors.New("not a refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil || user == nil {
		logger.Get().Warn("Refresh requested for unknown user",
			zap.String("userID", claims.UserID), zap.Error(err))
		return "", "", domain.NewNotFoundError(fmt.Sprintf("User %s not found for refresh token", claims.UserID))
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return "", "", err
	}
	logger.Get().Info("JWT token refreshed", zap.String("userID", user.ID))
	return accessToken, refreshToken, nil
}

// Logout clears the user's stored Google OAuth tokens. Issued JWTs stay valid
// until expiry; there is no server-side blacklist.
func (s *authServiceImpl) Logout(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error fetching user for logout: %w", err)
	}
	if user == nil {
		return domain.NewNotFoundError(fmt.Sprintf("User %s not found", userID))
	}

	user.EncryptedAccessToken = sql.NullString{}
	user.EncryptedRefreshToken = sql.NullString{}
	user.TokenExpiresAt = sql.NullTime{}
	user.UpdatedAt = time.Now()
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to clear user tokens: %w", err)
	}

	logger.Get().Info("User logged out, stored OAuth tokens cleared", zap.String("userID", userID))
	return nil
}

// EncryptToken seals a third-party OAuth token for storage. Empty tokens pass
// through so optional columns stay NULL.
func (s *authServiceImpl) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	nonce := make([]byte, s.tokenCipher.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	sealed := s.tokenCipher.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptToken reverses EncryptToken.
func (s *authServiceImpl) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(encryptedToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(data) < s.tokenCipher.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, sealed := data[:s.tokenCipher.NonceSize()], data[s.tokenCipher.NonceSize():]
	plain, err := s.tokenCipher.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plain), nil
}
