package middleware

import (
	"errors"
	"log"

	"coursehub/apperror"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JsonListResponse adds pagination metadata next to the data array.
func JsonListResponse(c *fiber.Ctx, message string, meta interface{}, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  true,
		"message": message,
		"meta":    meta,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, message string, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  false,
		"message": message,
		"errors":  errors,
	})
}

// ErrorHandler renders errors returned from handlers. Internal causes are
// logged and never sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if appErr.Kind == apperror.KindValidation && len(appErr.Fields) > 0 {
			return ValidationErrorResponse(c, appErr.Message, appErr.Fields)
		}
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), appErr)
		}
		return JsonResponse(c, appErr.Status, false, appErr.Message, nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JsonResponse(c, fiberErr.Code, false, fiberErr.Message, nil)
	}

	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return JsonResponse(c, fiber.StatusInternalServerError, false, "Internal server error!", nil)
}
