package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func HealthCheck(version string, started time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
			"uptime":    time.Since(started).Round(time.Second).String(),
		})
	}
}
