package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
	plathttp "github.com/oscarrryeezus/PAWS-backend/internal/platform/http"
)

// Module wires the auth services into HTTP routes. Construction of the
// services (store, cache, mailer, crypto) happens in the composition root.
type Module struct {
	users        domain.UserRepo
	registration *service.Registration
	pins         *service.Pins
	auth         *service.Auth
	sweeper      *service.Sweeper
	jwtSecret    []byte
}

func NewModule(users domain.UserRepo, registration *service.Registration, pins *service.Pins,
	auth *service.Auth, sweeper *service.Sweeper, jwtSecret string) *Module {
	return &Module{
		users:        users,
		registration: registration,
		pins:         pins,
		auth:         auth,
		sweeper:      sweeper,
		jwtSecret:    []byte(jwtSecret),
	}
}

func (m *Module) Register(r fiber.Router) {
	// -------- public --------
	usuarios := r.Group("/usuarios")
	usuarios.Post("/registrar", RegisterHandler(m.registration))
	usuarios.Post("/verificar-codigo-email", VerifyEmailCodeHandler(m.registration))
	usuarios.Post("/verificar-otp", VerifyOTPHandler(m.registration))
	usuarios.Post("/configurar-pin", ConfigurePinHandler(m.pins))
	usuarios.Post("/usar-pin", UsePinHandler(m.pins))
	usuarios.Post("/usar-pin-offline", UsePinOfflineHandler(m.pins))
	usuarios.Post("/estado-pin", PinStatusHandler(m.pins))

	r.Post("/login", LoginHandler(m.auth))

	rp := r.Group("/restablecerPassword")
	rp.Post("/solicitarRecuperarPassword", ForgotPasswordHandler(m.auth))
	rp.Post("/restablecerPassword", ResetPasswordHandler(m.auth))

	// -------- protected --------
	protected := r.Group("", plathttp.JWTAuth(m.jwtSecret))
	protected.Get("/usuarios/perfil", ProfileHandler(m.users))
	protected.Post("/logout", LogoutHandler(m.auth))
	protected.Get("/admin/estadisticas-limpieza", SweepStatsHandler(m.sweeper))
}
