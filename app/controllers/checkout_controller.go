package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AutoVinReports/VinFox/internal/pkg/payments"
)

// CheckoutRequest is the body for POST /create-checkout-session
type CheckoutRequest struct {
	VIN     string `json:"vin" validate:"required,len=17"`
	Email   string `json:"email" validate:"required,email"`
	Vehicle string `json:"vehicle" validate:"required"`
}

// HandleCreateCheckoutSession creates a Stripe checkout session carrying the
// VIN/email/vehicle triple as metadata and returns the redirect URL.
func (s *Server) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body.",
		})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "vin, email and vehicle are required.",
		})
	}

	url, err := s.Payments.CreateCheckoutSession(c.Context(), payments.CheckoutIntent{
		VIN:     req.VIN,
		Email:   req.Email,
		Vehicle: req.Vehicle,
	})
	if err != nil {
		log.Errorf("[Checkout] Session creation failed for %s: %v", req.VIN, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Unable to start checkout.",
		})
	}

	return c.JSON(fiber.Map{"url": url})
}
