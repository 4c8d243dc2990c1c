package courseRoutes

import (
	controllers "coursehub/controllers/course"
	"coursehub/middleware"
	validators "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the course catalog routes
func SetupCourseRoutes(app *fiber.App, courses *controllers.CourseController, verifier middleware.TokenVerifier) {
	courseGroup := app.Group("/course")
	requireAuth := middleware.JWTMiddleware(verifier)

	courseGroup.Post("/", requireAuth, validators.CreateCourse(), courses.CreateCourse)
	courseGroup.Get("/", validators.CourseList(), courses.GetAllCourses)
	courseGroup.Get("/:id", validators.CourseID(), courses.GetCourseDetails)
	courseGroup.Patch("/:id", requireAuth, validators.CourseID(), validators.UpdateCourse(), courses.UpdateCourse)
	courseGroup.Delete("/:id", validators.CourseID(), courses.DeleteCourse)

	// Thumbnail upload
	courseGroup.Post("/:id/upload", validators.CourseID(), courses.UploadThumbnail)
}
