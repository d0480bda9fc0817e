package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type resetPasswordReq struct {
	Email       string `json:"str_correo" validate:"required,email,max=30"`
	Code        string `json:"codigo" validate:"required,len=6,numeric"`
	NewPassword string `json:"nueva_pass" validate:"required,min=8,max=30"`
}

func ResetPasswordHandler(auth *service.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req resetPasswordReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Email = strings.TrimSpace(req.Email)
		req.Code = strings.TrimSpace(req.Code)
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    err.Error(),
			})
		}
		if !strongPassword(req.NewPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "WEAK_PASSWORD",
				"mensaje":    "La contraseña debe incluir letras, números y al menos un carácter especial",
			})
		}

		if err := auth.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
			var wrong *service.WrongCodeError
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "No existe una cuenta con ese correo",
				})
			case errors.Is(err, service.ErrCodeExpired):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error_code": "CODE_EXPIRED",
					"mensaje":    "Código no encontrado o expirado",
				})
			case errors.Is(err, service.ErrAttemptsExceeded):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error_code": "MAX_ATTEMPTS",
					"mensaje":    "Máximo de intentos excedido",
				})
			case errors.As(err, &wrong):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error_code":         "INVALID_CODE",
					"mensaje":            "Código incorrecto",
					"intentos_restantes": wrong.AttemptsLeft,
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al restablecer la contraseña",
				})
			}
		}

		return c.JSON(fiber.Map{"mensaje": "Contraseña actualizada correctamente"})
	}
}
