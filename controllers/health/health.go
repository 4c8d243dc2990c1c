package healthController

import (
	"coursehub/apperror"
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

// Pinger checks the database connection.
type Pinger func() error

// Health reports whether the service can reach its database
func Health(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ping(); err != nil {
			return &apperror.Error{
				Kind:    apperror.KindInternal,
				Status:  fiber.StatusServiceUnavailable,
				Message: "Database unavailable!",
				Err:     err,
			}
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", fiber.Map{"database": "up"})
	}
}
