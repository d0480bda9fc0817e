package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type forgotPasswordReq struct {
	Email string `json:"str_correo" validate:"required,email,max=30"`
}

func ForgotPasswordHandler(auth *service.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req forgotPasswordReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Email = strings.TrimSpace(req.Email)
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    err.Error(),
			})
		}

		if err := auth.RequestPasswordReset(req.Email); err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "No existe una cuenta con ese correo",
				})
			case errors.Is(err, service.ErrDispatchFailed):
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error_code": "EMAIL_DISPATCH_FAILED",
					"mensaje":    "No se pudo enviar el código de recuperación",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al solicitar la recuperación",
				})
			}
		}

		return c.JSON(fiber.Map{
			"mensaje": "Se ha enviado un correo con las instrucciones de recuperación",
		})
	}
}
