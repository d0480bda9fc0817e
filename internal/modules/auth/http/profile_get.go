package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
)

func ProfileHandler(users domain.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, _ := c.Locals("email").(string)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "UNAUTHORIZED",
				"mensaje":    "Acceso denegado. Token requerido.",
			})
		}
		u, err := users.GetByEmail(email)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error_code": "NOT_FOUND",
				"mensaje":    "Usuario no encontrado",
			})
		}
		resp := fiber.Map{
			"id":             u.ID,
			"nombre":         u.Name,
			"correo":         u.Email,
			"rol":            u.Role,
			"activo":         u.Active,
			"otp_habilitado": u.OTPEnabled,
			"ultimo_acceso":  u.LastAccess.UTC().Format(time.RFC3339),
		}
		if u.Location != nil {
			resp["ubicacion"] = *u.Location
		}
		return c.JSON(resp)
	}
}
