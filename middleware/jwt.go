package middleware

import (
	"strings"

	"coursehub/apperror"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

// JWTMiddleware rejects requests without a valid "Bearer <token>"
// Authorization header and stores the user id under c.Locals("userId").
func JWTMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperror.Auth("Missing Authorization header!")
		}

		// The token should be prefixed with "Bearer "
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		tokenString = strings.TrimSpace(tokenString)
		if !ok || scheme != "Bearer" || tokenString == "" {
			return apperror.Auth("Invalid Authorization header format!")
		}

		userID, err := verifier.VerifyToken(tokenString)
		if err != nil {
			return apperror.Auth("Invalid or expired token!")
		}

		c.Locals("userId", userID)
		return c.Next()
	}
}

// UserID returns the id stored by JWTMiddleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userId").(uint)
	return id, ok
}
