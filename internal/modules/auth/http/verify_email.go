package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type verifyEmailReq struct {
	Email string `json:"str_correo" validate:"required,email,max=30"`
	Code  string `json:"codigo" validate:"required,len=6,numeric"`
}

func VerifyEmailCodeHandler(reg *service.Registration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyEmailReq
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

		key, err := reg.ConfirmEmailCode(req.Email, req.Code)
		if err != nil {
			var wrong *service.WrongCodeError
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "No hay un registro pendiente para este correo",
				})
			case errors.Is(err, service.ErrAlreadyVerified):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "ALREADY_VERIFIED",
					"mensaje":    "El correo ya fue verificado",
				})
			case errors.Is(err, service.ErrCodeExpired):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "CODE_EXPIRED",
					"mensaje":    "Código no encontrado o expirado",
				})
			case errors.Is(err, service.ErrAttemptsExceeded):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "MAX_ATTEMPTS",
					"mensaje":    "Máximo de intentos excedido",
				})
			case errors.As(err, &wrong):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code":         "INVALID_CODE",
					"mensaje":            "Código incorrecto",
					"intentos_restantes": wrong.AttemptsLeft,
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al verificar el código",
				})
			}
		}

		return c.JSON(fiber.Map{
			"mensaje":    "Email verificado correctamente. Configura tu 2FA",
			"secreto":    key.Secret,
			"url_manual": key.URL,
			"qr_code":    key.QRCodePNG,
		})
	}
}
