package authRoutes

import (
	authControllers "coursehub/controllers/auth"
	authValidators "coursehub/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth *authControllers.AuthController) {
	app.Post("/register", authValidators.Register(), auth.Register)
	app.Post("/login", authValidators.Login(), auth.Login)
	app.Get("/verify-email", auth.VerifyEmail)
}
