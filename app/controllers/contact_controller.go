package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ContactRequest is the body for POST /contact
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	VIN     string `json:"vin" validate:"omitempty,len=17"`
	Message string `json:"message" validate:"required"`
}

// HandleContact relays a contact-form submission to the support address.
func (s *Server) HandleContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body.",
		})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "name, email and message are required.",
		})
	}

	if err := s.Mailer.SendContactMessage(c.Context(), req.Name, req.Email, req.VIN, req.Message); err != nil {
		log.Errorf("[Contact] Relay failed for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Unable to send your message right now.",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
