package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"inventory/internal/models"
	"inventory/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

const testJWTSecret = "test_jwt_secret"

func notFound(username string) error {
	return fmt.Errorf("user with username %s: %w", username, models.ErrNotFound)
}

func TestAuthService_RegisterUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, nil)

	// Test successful registration
	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, notFound("testuser")).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, "testuser", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Test username already taken
	mockRepo.On("GetByUsername", ctx, "testuser").Return(&models.User{ID: 1, Username: "testuser"}, nil).Once()
	_, err = authService.RegisterUser(ctx, "testuser", "password123", "")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Contains(t, err.Error(), "username 'testuser' already taken")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, nil)

	tests := []struct {
		name     string
		username string
		password string
		role     string
	}{
		{"unknown role", "testuser", "password123", "superuser"},
		{"short password", "testuser", "abc", ""},
		{"short username", "ab", "password123", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authService.RegisterUser(ctx, tt.username, tt.password, tt.role)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		})
	}
	mockRepo.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterUser_AdminRole(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, nil)

	mockRepo.On("GetByUsername", ctx, "boss").Return(nil, notFound("boss")).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin
	})).Return(nil).Once()

	user, err := authService.RegisterUser(ctx, "boss", "password123", models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, nil)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           42,
		Username:     "testuser",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}

	// Test successful login
	mockRepo.On("GetByUsername", ctx, user.Username).Return(user, nil).Once()
	token, loggedIn, err := authService.LoginUser(ctx, "testuser", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", ctx, user.Username).Return(user, nil).Once()
	_, _, err = authService.LoginUser(ctx, "testuser", "wrongpassword")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")

	// Test invalid credentials (user not found)
	mockRepo.On("GetByUsername", ctx, "nonexistentuser").Return(nil, notFound("nonexistentuser")).Once()
	_, _, err = authService.LoginUser(ctx, "nonexistentuser", "password123")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")

	// Storage failures are not disguised as bad credentials
	mockRepo.On("GetByUsername", ctx, "testuser").Return(nil, models.NewStorageError("get user by username", errors.New("connection reset"))).Once()
	_, _, err = authService.LoginUser(ctx, "testuser", "password123")
	assert.ErrorIs(t, err, models.ErrStorage)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, nil)

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  7,
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid token")

	// Test wrong secret
	forged, _ := token.SignedString([]byte("another_secret"))
	_, err = authService.ValidateToken(forged)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  7,
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid token")
}
