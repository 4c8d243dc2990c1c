package routers

import (
	authControllers "coursehub/controllers/auth"
	courseControllers "coursehub/controllers/course"
	healthController "coursehub/controllers/health"
	"coursehub/middleware"
	"coursehub/routers/authRoutes"
	"coursehub/routers/courseRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Dependencies are the components the HTTP layer is built from.
type Dependencies struct {
	Courses   *courseControllers.CourseController
	Auth      *authControllers.AuthController
	Verifier  middleware.TokenVerifier
	Ping      healthController.Pinger
	UploadDir string
	// Quiet disables request logging.
	Quiet bool
}

// NewApp builds the fiber application with every route registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "CourseHub",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE",      // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	if !deps.Quiet {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestid} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	// Serve uploaded thumbnails
	app.Static("/uploads", deps.UploadDir)

	app.Get("/health", healthController.Health(deps.Ping))
	authRoutes.SetupAuthRoutes(app, deps.Auth)
	courseRoutes.SetupCourseRoutes(app, deps.Courses, deps.Verifier)

	return app
}
