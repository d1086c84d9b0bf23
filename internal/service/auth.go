package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"marketforum/internal/config"
	"marketforum/internal/model"
	"marketforum/internal/repository"
)

// AuthService issues access tokens and rotates refresh tokens. Presenting a
// refresh token that was already rotated revokes every token of the user.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

// GenerateTokenPair issues a new access token and persists a refresh token.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID int64, userAgent, ipAddress string) (*model.TokenPair, error) {
	pair, _, err := s.issue(ctx, userID, userAgent, ipAddress)
	return pair, err
}

// RefreshTokens validates the refresh token and rotates a new pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshTokenRaw, userAgent, ipAddress string) (*model.TokenPair, error) {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		return nil, model.ErrRefreshTokenNotFound
	}

	if token.IsRevoked() {
		if err := s.refreshTokenRepo.RevokeAllForUser(ctx, token.UserID); err != nil {
			log.Errorf("[AuthService] Failed to revoke token family: user=%d err=%v", token.UserID, err)
		}
		log.Warnf("[AuthService] Refresh token reuse detected: user=%d token=%s", token.UserID, token.ID)
		return nil, model.ErrRefreshTokenReused
	}
	if token.IsExpired(time.Now()) {
		return nil, model.ErrRefreshTokenExpired
	}

	pair, newID, err := s.issue(ctx, token.UserID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Revoke(ctx, token.ID, &newID); err != nil {
		log.Errorf("[AuthService] Failed to revoke rotated token: token=%s err=%v", token.ID, err)
	}
	return pair, nil
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshTokenRaw string) error {
	token, err := s.refreshTokenRepo.FindByTokenHash(ctx, hashToken(refreshTokenRaw))
	if err != nil {
		return err
	}
	return s.refreshTokenRepo.Revoke(ctx, token.ID, nil)
}

func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
}

// PurgeExpiredTokens deletes refresh tokens that expired more than a day ago.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx, 24*time.Hour)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Infof("[AuthService] Purged %d expired refresh tokens", n)
	}
	return n, nil
}

// issue returns the pair and the stored refresh token's id.
func (s *AuthService) issue(ctx context.Context, userID int64, userAgent, ipAddress string) (*model.TokenPair, string, error) {
	accessToken, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshTokenRaw := uuid.New().String()
	refreshToken := &model.RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenMaxAge) * time.Second),
	}
	if userAgent != "" {
		refreshToken.UserAgent = &userAgent
	}
	if ipAddress != "" {
		refreshToken.IPAddress = &ipAddress
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, refreshToken.ID, nil
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
