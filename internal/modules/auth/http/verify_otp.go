package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type verifyOTPReq struct {
	Email string `json:"str_correo" validate:"required,email,max=30"`
	Code  string `json:"codigo_otp" validate:"required,len=6,numeric"`
}

func VerifyOTPHandler(reg *service.Registration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyOTPReq
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

		u, err := reg.ConfirmOTPAndActivate(req.Email, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "No hay un registro pendiente para este correo",
				})
			case errors.Is(err, service.ErrEmailNotVerified):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "EMAIL_NOT_VERIFIED",
					"mensaje":    "Debes verificar tu correo antes de confirmar el OTP",
				})
			case errors.Is(err, service.ErrWrongOTP):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "INVALID_OTP",
					"mensaje":    "Código OTP inválido o expirado",
				})
			case errors.Is(err, domain.ErrEmailTaken):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error_code": "EMAIL_TAKEN",
					"mensaje":    "El email ya está registrado",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al activar la cuenta",
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"mensaje": "Cuenta creada y activada correctamente",
			"usuario": fiber.Map{
				"id":         u.ID,
				"nombre":     u.Name,
				"correo":     u.Email,
				"rol":        u.Role,
				"activo":     u.Active,
				"otp_activo": u.OTPEnabled,
			},
		})
	}
}
