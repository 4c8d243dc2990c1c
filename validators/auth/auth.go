package authValidator

import (
	"coursehub/apperror"
	"coursehub/services"

	"github.com/gofiber/fiber/v2"
)

// Register parses the registration body and stores it as "registerInput".
// Field rules are enforced by the account service.
func Register() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.RegisterInput)
		if err := c.BodyParser(reqData); err != nil {
			return apperror.ValidationField("body", "Invalid request body!")
		}

		c.Locals("registerInput", reqData)
		return c.Next()
	}
}

// Login parses the login body and stores it as "loginInput".
func Login() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(services.LoginInput)
		if err := c.BodyParser(reqData); err != nil {
			return apperror.ValidationField("body", "Invalid request body!")
		}

		c.Locals("loginInput", reqData)
		return c.Next()
	}
}
