package http

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
)

type loginReq struct {
	Email    string `json:"str_correo" validate:"required,email,max=30"`
	Password string `json:"str_pass" validate:"required,min=8,max=30"`
	OTPCode  string `json:"codigo_otp" validate:"omitempty,len=6,numeric"`
}

func LoginHandler(auth *service.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginReq
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

		res, err := auth.Login(c.Context(), req.Email, req.Password, req.OTPCode)
		if err != nil {
			var active *service.SessionActiveError
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				// deliberately ambiguous: do not confirm whether the
				// account exists
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error_code": "INVALID_CREDENTIALS",
					"mensaje":    "Correo o contraseña incorrectos",
				})
			case errors.Is(err, service.ErrAccountInactive):
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error_code": "ACCOUNT_INACTIVE",
					"mensaje":    "La cuenta no está activa. Verifica tu correo y OTP",
				})
			case errors.As(err, &active):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error_code":        "SESSION_ACTIVE",
					"mensaje":           "Ya existe una sesión activa para esta cuenta",
					"minutos_restantes": int(math.Ceil(active.Remaining.Minutes())),
				})
			case errors.Is(err, service.ErrWrongOTP):
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error_code": "INVALID_OTP",
					"mensaje":    "Código OTP inválido o expirado",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"mensaje":    "Error interno al iniciar sesión",
				})
			}
		}

		return c.JSON(fiber.Map{
			"mensaje": "Inicio de sesión exitoso",
			"token":   res.Token,
			"expira":  res.ExpiresAt.UTC().Format(time.RFC3339),
			"usuario": fiber.Map{
				"id":             res.User.ID,
				"nombre":         res.User.Name,
				"correo":         res.User.Email,
				"rol":            res.User.Role,
				"otp_habilitado": res.User.OTPEnabled,
				"ultimo_acceso":  res.User.LastAccess.UTC().Format(time.RFC3339),
			},
		})
	}
}
