package http

import "github.com/gofiber/fiber/v2"

type rootHandler struct{}

func NewRootHandler() Handler {
	return &rootHandler{}
}

func (h *rootHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"hello": "world"})
}
