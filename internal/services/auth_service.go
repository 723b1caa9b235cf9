package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour,
		validate:   validator.New(),
		logger:     logger,
	}
}

// RegisterUser registers a new user with a hashed password. An empty role means "user".
func (s *AuthService) RegisterUser(ctx context.Context, username, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.InvalidArgument("unknown role '%s'", role)
	}
	if len(password) < 6 {
		return nil, models.InvalidArgument("password must be at least 6 characters")
	}

	user := &models.User{Username: username, Role: role}
	if err := s.validate.Struct(user); err != nil {
		return nil, models.InvalidArgument("%v", err)
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("%w: username '%s' already taken", models.ErrConflict, username)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// LoginUser authenticates a user and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrStorage) {
			return "", nil, err
		}
		// Same answer for unknown user and wrong password.
		return "", nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	now := jwt.TimeFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("Token validation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid token: %v", models.ErrUnauthorized, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
}
