package http

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type registerReq struct {
	Name     string `json:"str_nombre" validate:"required,min=3,max=30"`
	Email    string `json:"str_correo" validate:"required,email,max=30"`
	Password string `json:"str_pass" validate:"required,min=8,max=30"`
}

var validate = validator.New()

func RegisterHandler(reg *service.Registration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"mensaje":    "Datos inválidos",
			})
		}
		req.Email = strings.TrimSpace(req.Email)
		req.Name = strings.TrimSpace(req.Name)

		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"mensaje":    err.Error(),
			})
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_EMAIL",
				"mensaje":    "El correo debe tener un formato válido",
			})
		}
		if !strongPassword(req.Password) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "WEAK_PASSWORD",
				"mensaje":    "La contraseña debe incluir letras, números y al menos un carácter especial",
			})
		}

		if err := reg.Begin(req.Name, req.Email, req.Password); err != nil {
			switch {
			case errors.Is(err, domain.ErrEmailTaken):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error_code": "EMAIL_TAKEN",
					"mensaje":    "El email ya está registrado",
				})
			case errors.Is(err, service.ErrPendingExists):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error_code": "PENDING_EXISTS",
					"mensaje":    "Ya existe un registro pendiente para este correo",
				})
			case errors.Is(err, service.ErrDispatchFailed):
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error_code": "EMAIL_DISPATCH_FAILED",
					"mensaje":    "No se pudo enviar el código de verificación",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error al registrar usuario",
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"mensaje": "Registro iniciado. Revisa tu correo para verificar tu cuenta",
		})
	}
}

// strongPassword requires at least one letter, one digit and one special
// character.
func strongPassword(pw string) bool {
	var letter, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return letter && digit && special
}
