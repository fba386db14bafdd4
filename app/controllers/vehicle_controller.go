package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// HandleVehicleInfo returns the provider's summary record for a VIN.
// Missing provider data is a success:false answer, never a 5xx; only a
// failed upstream call becomes a 500, with the detail kept in server logs.
func (s *Server) HandleVehicleInfo(c *fiber.Ctx) error {
	vin := c.Params("vin")
	if vin == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "VIN is required.",
		})
	}

	record, err := s.Provider.CheckRecords(c.Context(), vin)
	if err != nil {
		log.Errorf("[Vehicle] Lookup failed for %s: %v", vin, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Error fetching vehicle info.",
		})
	}

	if record.Make == "" && record.Model == "" {
		return c.JSON(fiber.Map{
			"success": false,
			"message": "No vehicle information found for this VIN.",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"vin":     record.VIN,
		"vehicle": fiber.Map{
			"make":  record.Make,
			"model": record.Model,
			"year":  record.Year,
		},
	})
}
