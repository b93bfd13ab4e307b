package serverutils

import "github.com/gofiber/fiber/v2"

var (
	ErrBadRequest         = fiber.NewError(fiber.StatusBadRequest, "bad request")
	ErrUnauthorized       = fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	ErrForbidden          = fiber.NewError(fiber.StatusForbidden, "forbidden")
	ErrNotFound           = fiber.NewError(fiber.StatusNotFound, "resource not found")
	ErrServiceUnavailable = fiber.NewError(fiber.StatusServiceUnavailable, "service unavailable")
)

// BadRequest builds a 400 with a specific message
func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Unavailable(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusServiceUnavailable, message)
}
