package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tripwise/internal/app/models"
	"tripwise/internal/pkg/config"
	"tripwise/internal/pkg/observability/metrics"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for authentication.
type Service interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error)
	RefreshSession(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	repo   Repo
	cfg    *config.Config
}

func NewService(repo Repo, cfg *config.Config, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, cfg: cfg}
}

// Register hashes the password and stores a new user. Returns the new user ID.
func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) (string, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))
	l.Debug("Attempting registration")
	metrics.Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "register")))

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("Failed to hash password", zap.Error(err))
		return "", fmt.Errorf("could not process password")
	}

	userID, err := s.repo.Register(ctx, username, email, string(hashedPasswordBytes))
	if err != nil {
		l.Error("Repository registration failed", zap.Error(err))
		return "", fmt.Errorf("registration failed: %w", err)
	}

	l.Info("Registration successful", zap.String("userID", userID))
	return userID, nil
}

// Login validates credentials, generates tokens, stores the refresh token.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (string, string, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")
	metrics.Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "login")))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Warn("GetUserByEmail failed", zap.Error(err))
		// Don't reveal whether the user exists or the password is wrong
		return "", "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.Warn("Password comparison failed", zap.String("userID", user.ID))
		return "", "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		l.Error("Failed to generate tokens", zap.String("userID", user.ID), zap.Error(err))
		return "", "", fmt.Errorf("internal error generating tokens: %w", err)
	}

	refreshExpiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, refreshExpiresAt); err != nil {
		l.Error("Failed to store refresh token", zap.String("userID", user.ID), zap.Error(err))
		return "", "", fmt.Errorf("internal error storing session: %w", err)
	}

	l.Info("Login successful")
	return accessToken, refreshToken, nil
}

// RefreshSession validates the refresh token, issues new tokens and rotates
// the refresh token.
func (s *ServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (string, string, error) {
	l := s.logger.With(zap.String("method", "RefreshSession"))
	l.Debug("Attempting token refresh")
	metrics.Get().AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "refresh")))

	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, refreshToken)
	if err != nil {
		l.Warn("Refresh token validation failed", zap.Error(err))
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		l.Error("Failed to get user after refresh token validation", zap.String("userID", userID), zap.Error(err))
		if revokeErr := s.repo.InvalidateRefreshToken(ctx, refreshToken); revokeErr != nil {
			l.Warn("Failed to revoke suspicious refresh token", zap.Error(revokeErr))
		}
		return "", "", fmt.Errorf("internal error retrieving user during refresh")
	}

	newAccessToken, newRefreshToken, err := s.generateTokens(user)
	if err != nil {
		l.Error("Failed to generate new tokens", zap.String("userID", user.ID), zap.Error(err))
		return "", "", fmt.Errorf("internal error generating tokens: %w", err)
	}

	refreshExpiresAt := time.Now().Add(s.cfg.JWT.RefreshTokenTTL)
	if err := s.repo.StoreRefreshToken(ctx, user.ID, newRefreshToken, refreshExpiresAt); err != nil {
		l.Error("Failed to store new refresh token", zap.String("userID", user.ID), zap.Error(err))
		return "", "", fmt.Errorf("internal error storing new session: %w", err)
	}

	// Rotation: the old token must not stay usable
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.Warn("Failed to invalidate old refresh token during rotation", zap.String("userID", user.ID), zap.Error(err))
	}

	l.Info("Token refresh successful", zap.String("userID", user.ID))
	return newAccessToken, newRefreshToken, nil
}

// Logout invalidates the provided refresh token.
func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	l := s.logger.With(zap.String("method", "Logout"))
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		l.Error("Failed to invalidate refresh token", zap.Error(err))
		return fmt.Errorf("logout failed: %w", err)
	}
	l.Info("Logout successful")
	return nil
}

func (s *ServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.UserAuth, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return user, nil
}

func (s *ServiceImpl) generateTokens(user *models.UserAuth) (accessToken string, refreshToken string, err error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
			Issuer:    s.cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWT.Audience},
		},
	}

	accessTokenJWT := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err = accessTokenJWT.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	// Refresh token is an opaque UUID stored in the database
	refreshToken = uuid.NewString()
	return accessToken, refreshToken, nil
}
