package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

func LogoutHandler(auth *service.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals("email").(string)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "UNAUTHORIZED",
				"mensaje":    "Acceso denegado. Token requerido.",
			})
		}
		if err := auth.Logout(email); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"mensaje":    "Error al cerrar la sesión",
			})
		}
		return c.JSON(fiber.Map{"mensaje": "Sesión cerrada correctamente"})
	}
}
