package middleware

import (
	"net/http"
	"strings"

	"freshbulk-service/internal/model"
	"freshbulk-service/pkg/jwtutil"
	"freshbulk-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and stores the caller's
// identity (id, username, email, role) in the request context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)

		return next(c)
	}
}

// AdminMiddleware requires an authenticated caller with the admin role.
// It must run after AuthMiddleware.
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		role, _ := c.Get("user_role").(string)
		if role != model.RoleAdmin {
			log.Warn("Admin access denied",
				zap.String("role", role),
				zap.String("path", c.Path()))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
		}
		return next(c)
	}
}

// CallerEmail returns the authenticated caller's email from the context
func CallerEmail(c echo.Context) string {
	email, _ := c.Get("email").(string)
	return email
}

// CallerRole returns the authenticated caller's role from the context
func CallerRole(c echo.Context) string {
	role, _ := c.Get("user_role").(string)
	return role
}

// IsAdmin reports whether the authenticated caller has the admin role
func IsAdmin(c echo.Context) bool {
	return CallerRole(c) == model.RoleAdmin
}
