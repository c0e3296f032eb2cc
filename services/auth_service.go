package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/projectdesk/config"
	"github.com/projectdesk/dto"
	"github.com/projectdesk/metrics"
	"github.com/projectdesk/models"
	"github.com/projectdesk/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService issues, validates and revokes access tokens
type AuthService struct {
	users   *repositories.UserRepository
	revoked *repositories.RevokedTokenRepository
	secret  []byte
	ttl     time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewAuthService creates a new auth service instance
func NewAuthService(db *gorm.DB, cfg config.AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{
		users:   repositories.NewUserRepository(db),
		revoked: repositories.NewRevokedTokenRepository(db),
		secret:  []byte(cfg.JWTSecret),
		ttl:     cfg.TokenTTL,
		log:     log.Named("auth"),
		now:     time.Now,
	}
}

// Register creates a new user account and signs it in
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	taken, err := s.users.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, storage("failed to check email", err)
	}
	if taken {
		metrics.ObserveMutation("user", "create", metrics.ResultRejected)
		return nil, malformed("email", "email has already been taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storage("failed to hash password", err)
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		metrics.ObserveMutation("user", "create", metrics.ResultRolledBack)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, malformed("email", "email has already been taken")
		}
		return nil, storage("failed to create user", err)
	}
	metrics.ObserveMutation("user", "create", metrics.ResultCommitted)
	s.log.Info("user registered", zap.Uint("user_id", user.ID))

	return s.issue(user)
}

// Login authenticates a user and returns a token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info("login failed", zap.String("email", req.Email))
			return nil, unauthorized("invalid email or password")
		}
		return nil, storage("failed to find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.log.Info("login failed", zap.String("email", req.Email))
		return nil, unauthorized("invalid email or password")
	}

	s.log.Info("login succeeded", zap.Uint("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) issue(user models.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.GenerateToken(user)
	if err != nil {
		return nil, storage("failed to sign token", err)
	}
	return &dto.AuthResponse{Token: token, User: user, ExpiresAt: expiresAt}, nil
}

// GenerateToken signs an HS256 token for the user with a fresh token id
func (s *AuthService) GenerateToken(user models.User) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := dto.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Authenticate validates a token and checks it has not been revoked and that
// its user still exists.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*dto.TokenClaims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, unauthorized("invalid token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, storage("failed to check token", err)
	}
	if revoked {
		return nil, unauthorized("token has been revoked")
	}

	if _, err := s.users.FindByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("user no longer exists")
		}
		return nil, storage("failed to find user", err)
	}
	return claims, nil
}

// ValidateToken checks signature and expiry and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*dto.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return claims, nil
}

// Logout revokes the presented token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *dto.TokenClaims) error {
	expiresAt := s.now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	err := s.revoked.Revoke(ctx, &models.RevokedToken{
		ID:        claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return storage("failed to revoke token", err)
	}

	if removed, err := s.revoked.DeleteExpired(ctx, s.now()); err != nil {
		s.log.Warn("failed to prune revoked tokens", zap.Error(err))
	} else if removed > 0 {
		s.log.Debug("pruned revoked tokens", zap.Int64("count", removed))
	}

	s.log.Info("user logged out", zap.Uint("user_id", claims.UserID))
	return nil
}

// ChangePassword replaces the acting user's password after checking the old one
func (s *AuthService) ChangePassword(ctx context.Context, actorID uint, req dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("id", "user %d not found", actorID)
		}
		return storage("failed to find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return unauthorized("old password does not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return storage("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, actorID, string(hashed)); err != nil {
		metrics.ObserveMutation("user", "password", metrics.ResultRolledBack)
		return storage("failed to update password", err)
	}
	metrics.ObserveMutation("user", "password", metrics.ResultCommitted)
	s.log.Info("password changed", zap.Uint("user_id", actorID))
	return nil
}
