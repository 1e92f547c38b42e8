package utils

import "github.com/gofiber/fiber/v2"

// Envelope wraps every JSON body the service answers with. Exactly one of
// Data and Error is set.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func JSONSuccess(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Status: "ok", Data: data})
}

func JSONError(c *fiber.Ctx, status int, reason string) error {
	return c.Status(status).JSON(Envelope{Status: "error", Error: reason})
}
