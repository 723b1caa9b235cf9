package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalRole     = "role"
)

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			logger.Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// JSON numbers decode as float64.
		id, ok := claims["user_id"].(float64)
		if !ok || id <= 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Token carries no user",
			})
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)

		c.Locals(LocalUserID, uint(id))
		c.Locals(LocalUsername, username)
		c.Locals(LocalRole, role)

		return c.Next()
	}
}

// RequireRole rejects callers whose token does not carry role. It must run after AuthRequired.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentRole(c) != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	return id, ok
}

// CurrentRole returns the authenticated user's role, or "" if there is none.
func CurrentRole(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}
