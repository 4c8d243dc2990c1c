package controllers

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"coursehub/apperror"
	"coursehub/database"
	"coursehub/middleware"
	"coursehub/utils"

	"github.com/gofiber/fiber/v2"
)

const unsupportedThumbnail = "Thumbnail must be a jpg, jpeg, png, gif or webp image!"

// UploadThumbnail stores an image sent as the multipart field "thumbnail"
// and points the course's thumbnail_url at it.
func (cc *CourseController) UploadThumbnail(c *fiber.Ctx) error {
	course, err := cc.findCourse(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return apperror.ValidationField("thumbnail", "Thumbnail file is required!")
	}
	if !utils.IsImageFile(file.Filename) {
		return apperror.ValidationField("thumbnail", unsupportedThumbnail)
	}

	filename, err := utils.SaveUploadedFile(file, cc.uploadDir)
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedImage) {
			return apperror.ValidationField("thumbnail", unsupportedThumbnail)
		}
		return apperror.Internal("Failed to save thumbnail!", err)
	}

	updated, err := cc.store.Update(c.UserContext(), course.ID, map[string]any{
		"thumbnail_url": utils.GetFileURL(filename),
	})
	if err != nil {
		if rmErr := os.Remove(filepath.Join(cc.uploadDir, filename)); rmErr != nil {
			log.Printf("[UPLOAD] Could not remove orphaned thumbnail %s: %v", filename, rmErr)
		}
		if errors.Is(err, database.ErrNotFound) {
			return apperror.NotFound("Course not found!")
		}
		return apperror.Internal("Failed to update course thumbnail!", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", updated)
}
