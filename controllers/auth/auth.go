package authController

import (
	"context"

	"coursehub/apperror"
	"coursehub/middleware"
	"coursehub/models"
	"coursehub/services"

	"github.com/gofiber/fiber/v2"
)

// AccountService is the workflow behind the auth endpoints.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (string, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
}

type AuthController struct {
	accounts AccountService
}

func NewAuthController(accounts AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// Register creates an unverified account and sends the verification email
func (ac *AuthController) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("registerInput").(*services.RegisterInput)
	if !ok {
		return apperror.ValidationField("body", "Invalid request data!")
	}

	user, err := ac.accounts.Register(c.UserContext(), *reqData)
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully! Please verify your email.", user)
}

// Login exchanges credentials for a bearer token
func (ac *AuthController) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("loginInput").(*services.LoginInput)
	if !ok {
		return apperror.ValidationField("body", "Invalid request data!")
	}

	token, err := ac.accounts.Login(c.UserContext(), *reqData)
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{"token": token})
}

// VerifyEmail consumes the token from the verification link
func (ac *AuthController) VerifyEmail(c *fiber.Ctx) error {
	user, err := ac.accounts.VerifyEmail(c.UserContext(), c.Query("token"))
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully!", user)
}
