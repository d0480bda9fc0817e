package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type configurePinReq struct {
	Email   string `json:"str_correo" validate:"required,email,max=30"`
	OTPCode string `json:"codigo_otp" validate:"required,len=6,numeric"`
}

func ConfigurePinHandler(pins *service.Pins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req configurePinReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Email = strings.TrimSpace(req.Email)
		req.OTPCode = strings.TrimSpace(req.OTPCode)
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    err.Error(),
			})
		}

		issued, err := pins.Configure(req.Email, req.OTPCode)
		if err != nil {
			var notEligible *service.NotEligibleError
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "Usuario no encontrado",
				})
			case errors.As(err, &notEligible):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error_code": "NOT_ELIGIBLE",
					"mensaje":    eligibilityMessage(notEligible.Reason),
					"motivo":     string(notEligible.Reason),
				})
			case errors.Is(err, service.ErrPinAlreadyLive):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error_code": "PIN_ALREADY_ACTIVE",
					"mensaje":    "Ya existe un PIN activo. Úsalo o espera a que expire",
				})
			case errors.Is(err, service.ErrWrongOTP):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "INVALID_OTP",
					"mensaje":    "Código OTP inválido o expirado",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al configurar el PIN",
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"mensaje":       "PIN configurado correctamente. Guárdalo: no se volverá a mostrar",
			"pin":           issued.Pin,
			"expira":        issued.ExpiresAt.UTC().Format(time.RFC3339),
			"dias_validez":  issued.ValidityDays,
			"datos_offline": issued.Offline,
		})
	}
}

func eligibilityMessage(reason domain.PinEligibility) string {
	switch reason {
	case domain.PinAccountInactive:
		return "La cuenta debe estar activa para configurar PIN"
	case domain.PinOTPNotConfigured:
		return "Debe tener OTP configurado para usar PIN"
	default:
		return "Usuario no válido para configurar PIN"
	}
}
