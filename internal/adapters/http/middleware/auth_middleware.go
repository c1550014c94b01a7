package middleware

import (
	"strings"

	"github.com/Goldwhyit/almere-pickleball/internal/config"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/jwt"
	"github.com/Goldwhyit/almere-pickleball/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("accountType", claims.AccountType)

		return c.Next()
	}
}

// AccountTypeMiddleware creates account-type based authorization middleware
func AccountTypeMiddleware(allowedTypes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountType, ok := c.Locals("accountType").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowed := range allowedTypes {
			if accountType == allowed {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN accounts
func AdminOnly() fiber.Handler {
	return AccountTypeMiddleware("ADMIN")
}

// MemberOrAdmin middleware allows full members and admins
func MemberOrAdmin() fiber.Handler {
	return AccountTypeMiddleware("MEMBER", "ADMIN")
}
