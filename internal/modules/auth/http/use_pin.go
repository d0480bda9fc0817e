package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

type usePinReq struct {
	Email string `json:"str_correo" validate:"required,email,max=30"`
	Pin   string `json:"pin" validate:"required,len=6,numeric"`
}

type usePinOfflineReq struct {
	Offline security.OfflineBundle `json:"datos_offline" validate:"required"`
	Pin     string                 `json:"pin" validate:"required,len=6,numeric"`
}

func UsePinHandler(pins *service.Pins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usePinReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Email = strings.TrimSpace(req.Email)
		req.Pin = strings.TrimSpace(req.Pin)
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    err.Error(),
			})
		}

		token, err := pins.Consume(req.Email, req.Pin)
		if err != nil {
			return usePinError(c, err)
		}
		return c.JSON(fiber.Map{
			"mensaje": "PIN validado correctamente. El PIN queda inutilizado",
			"token":   token,
		})
	}
}

// UsePinOfflineHandler accepts the encrypted bundle issued at
// configuration time instead of the bare email, for clients that cached
// it while offline.
func UsePinOfflineHandler(pins *service.Pins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req usePinOfflineReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Pin = strings.TrimSpace(req.Pin)
		if err := validate.Struct(req); err != nil || req.Offline.EncryptedData == "" || req.Offline.IV == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    "Datos offline incompletos",
			})
		}

		token, err := pins.ConsumeOffline(&req.Offline, req.Pin)
		if err != nil {
			return usePinError(c, err)
		}
		return c.JSON(fiber.Map{
			"mensaje": "PIN validado correctamente. El PIN queda inutilizado",
			"token":   token,
		})
	}
}

func usePinError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoLivePin):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error_code": "NO_ACTIVE_PIN",
			"mensaje":    "No hay un PIN activo para este usuario",
		})
	case errors.Is(err, service.ErrWrongPin):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error_code": "INVALID_PIN",
			"mensaje":    "PIN incorrecto",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error_code": "SERVER_ERROR",
			"mensaje":    "Error al validar el PIN",
		})
	}
}
