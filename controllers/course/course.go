package controllers

import (
	"context"
	"errors"

	"coursehub/apperror"
	"coursehub/database"
	"coursehub/filters"
	"coursehub/middleware"
	"coursehub/models"
	courseValidator "coursehub/validators/course"

	"github.com/gofiber/fiber/v2"
)

// CourseStore is the data access the course endpoints need.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, q *filters.CourseQuery) ([]models.Course, int64, error)
	Update(ctx context.Context, id uint, updates map[string]any) (*models.Course, error)
	Delete(ctx context.Context, id uint) error
}

type CourseController struct {
	store     CourseStore
	uploadDir string
}

func NewCourseController(store CourseStore, uploadDir string) *CourseController {
	return &CourseController{store: store, uploadDir: uploadDir}
}

// CreateCourse creates a new course
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return apperror.ValidationField("body", "Invalid request data!")
	}

	course := models.Course{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Price:         *reqData.Price,
		DiscountPrice: reqData.DiscountPrice,
		AverageRating: *reqData.AverageRating,
		Language:      reqData.Language,
		TotalDuration: *reqData.TotalDuration,
		ThumbnailURL:  reqData.ThumbnailURL,
	}
	if reqData.ReviewCount != nil {
		course.ReviewCount = *reqData.ReviewCount
	}

	if err := cc.store.Create(c.UserContext(), &course); err != nil {
		return apperror.Internal("Failed to create course!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetAllCourses lists courses matching the translated query string
func (cc *CourseController) GetAllCourses(c *fiber.Ctx) error {
	query, ok := c.Locals("courseQuery").(*filters.CourseQuery)
	if !ok {
		return apperror.ValidationField("query", "Invalid query!")
	}

	courses, total, err := cc.store.List(c.UserContext(), query)
	if err != nil {
		return apperror.Internal("Failed to fetch courses!", err)
	}

	meta := fiber.Map{
		"total":      total,
		"page":       query.Page,
		"limit":      query.Limit,
		"totalPages": filters.TotalPages(total, query.Limit),
	}

	return middleware.JsonListResponse(c, "Courses fetched successfully!", meta, courses)
}

// GetCourseDetails returns a single course
func (cc *CourseController) GetCourseDetails(c *fiber.Ctx) error {
	course, err := cc.findCourse(c)
	if err != nil {
		return err
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", course)
}

// UpdateCourse applies only the fields present in the request
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	reqData, ok := c.Locals("validatedCourseUpdate").(*courseValidator.UpdateCourseRequest)
	if !ok {
		return apperror.ValidationField("body", "Invalid request data!")
	}

	course, err := cc.store.Update(c.UserContext(), courseID, courseUpdates(reqData))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperror.NotFound("Course not found!")
		}
		return apperror.Internal("Failed to update course!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse removes a course permanently
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	if err := cc.store.Delete(c.UserContext(), courseID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperror.NotFound("Course not found!")
		}
		return apperror.Internal("Failed to delete course!", err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (cc *CourseController) findCourse(c *fiber.Ctx) (*models.Course, error) {
	courseID := c.Locals("courseID").(uint)

	course, err := cc.store.FindByID(c.UserContext(), courseID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.NotFound("Course not found!")
		}
		return nil, apperror.Internal("Failed to fetch course!", err)
	}
	return course, nil
}

// courseUpdates maps request fields onto column names.
func courseUpdates(req *courseValidator.UpdateCourseRequest) map[string]any {
	updates := make(map[string]any)
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountPrice != nil {
		updates["discount_price"] = *req.DiscountPrice
	}
	if req.AverageRating != nil {
		updates["average_rating"] = *req.AverageRating
	}
	if req.ReviewCount != nil {
		updates["review_count"] = *req.ReviewCount
	}
	if req.Language != nil {
		updates["language"] = *req.Language
	}
	if req.TotalDuration != nil {
		updates["total_duration"] = *req.TotalDuration
	}
	if req.ThumbnailURL != nil {
		updates["thumbnail_url"] = *req.ThumbnailURL
	}
	return updates
}
