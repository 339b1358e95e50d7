package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// HTTPObserver recibe una observación por petición atendida.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int)
}

// MetricsMiddleware registra método, ruta (patrón, no path concreto) y status de cada petición.
func MetricsMiddleware(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		obs.ObserveHTTP(c.Method(), c.Route().Path, status)
		return err
	}
}
