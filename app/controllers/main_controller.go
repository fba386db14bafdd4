package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleHome is the plain-text liveness endpoint
func (s *Server) HandleHome(c *fiber.Ctx) error {
	return c.SendString("VinFox report service is running")
}
