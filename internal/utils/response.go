package utils

import (
	"github.com/gofiber/fiber/v2"
)

// DataResponse sends a success envelope: {"data": ...}
func DataResponse(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// ListResponse sends a success envelope for collections, with a count.
func ListResponse(c *fiber.Ctx, data interface{}, count int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"count": count, "data": data})
}

// ErrorResponse sends a failure envelope: {"error": message}
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// MessageResponse sends a success envelope whose data is a message.
func MessageResponse(c *fiber.Ctx, message string) error {
	return DataResponse(c, fiber.StatusOK, fiber.Map{"message": message})
}

// DataResponseStruct defines the schema for success responses
type DataResponseStruct struct {
	Data interface{} `json:"data"`
}

// ListResponseStruct defines the schema for collection responses
type ListResponseStruct struct {
	Count int         `json:"count"`
	Data  interface{} `json:"data"`
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error string `json:"error"`
}
