package courseValidator

import (
	"strconv"
	"strings"

	"coursehub/apperror"
	"coursehub/filters"
	"coursehub/validators"

	"github.com/gofiber/fiber/v2"
)

// CreateCourseRequest is the body of POST /course.
type CreateCourseRequest struct {
	Title         string   `json:"title" validate:"required,notblank,max=255"`
	Description   string   `json:"description" validate:"required,notblank"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	AverageRating *float64 `json:"averageRating" validate:"required,gte=0,lte=5"`
	ReviewCount   *int     `json:"reviewCount" validate:"omitempty,gte=0"`
	Language      string   `json:"language" validate:"required,notblank,max=64"`
	TotalDuration *int     `json:"totalDuration" validate:"required,gte=1"`
	ThumbnailURL  *string  `json:"thumbnailUrl" validate:"omitempty,url"`
}

// UpdateCourseRequest is the body of PATCH /course/:id. Absent fields are left unchanged.
type UpdateCourseRequest struct {
	Title         *string  `json:"title" validate:"omitempty,notblank,max=255"`
	Description   *string  `json:"description" validate:"omitempty,notblank"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gte=0"`
	AverageRating *float64 `json:"averageRating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount   *int     `json:"reviewCount" validate:"omitempty,gte=0"`
	Language      *string  `json:"language" validate:"omitempty,notblank,max=64"`
	TotalDuration *int     `json:"totalDuration" validate:"omitempty,gte=1"`
	ThumbnailURL  *string  `json:"thumbnailUrl" validate:"omitempty,url"`
}

// CreateCourse validates the creation body and stores it as "validatedCourse".
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return apperror.ValidationField("body", "Invalid request body!")
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Language = strings.TrimSpace(reqData.Language)

		if errors := validators.Struct(reqData); errors != nil {
			return apperror.Validation("Validation failed!", errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourse validates the partial update body and the course id.
func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UpdateCourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return apperror.ValidationField("body", "Invalid request body!")
		}

		if reqData.Title != nil {
			*reqData.Title = strings.TrimSpace(*reqData.Title)
		}
		if reqData.Language != nil {
			*reqData.Language = strings.TrimSpace(*reqData.Language)
		}

		if errors := validators.Struct(reqData); errors != nil {
			return apperror.Validation("Validation failed!", errors)
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CourseID validates the :id route parameter and stores it as "courseID".
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return apperror.ValidationField("id", "Course ID is required!")
		}

		courseID, err := strconv.ParseUint(courseIDStr, 10, 64)
		if err != nil || courseID == 0 {
			return apperror.ValidationField("id", "Invalid Course ID!")
		}

		c.Locals("courseID", uint(courseID))
		return c.Next()
	}
}

// CourseList translates the query string into a filters.CourseQuery
// stored as "courseQuery".
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query, err := filters.ParseCourseQuery(c.Queries())
		if err != nil {
			return err
		}

		c.Locals("courseQuery", query)
		return c.Next()
	}
}
