package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type pinStatusReq struct {
	Email string `json:"str_correo" validate:"required,email,max=30"`
}

func PinStatusHandler(pins *service.Pins) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req pinStatusReq
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

		report, err := pins.Status(req.Email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"mensaje":    "Usuario no encontrado",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"mensaje":    "Error al obtener el estado del PIN",
			})
		}

		resp := fiber.Map{
			"estado":         string(report.Status),
			"dias_restantes": report.DaysRemaining,
			"ultimo_acceso":  report.LastAccess.UTC().Format(time.RFC3339),
		}
		if report.ExpiresAt != nil {
			resp["expira"] = report.ExpiresAt.UTC().Format(time.RFC3339)
		}
		return c.JSON(resp)
	}
}
