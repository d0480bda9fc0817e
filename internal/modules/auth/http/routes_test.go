package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/service"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/geo"
	plathttp "github.com/oscarrryeezus/PAWS-backend/internal/platform/http"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

const testOTPCode = "123456"

type stubMailer struct {
	lastCode string
}

func (m *stubMailer) SendVerificationCode(to, name, code string) error {
	m.lastCode = code
	return nil
}

func (m *stubMailer) SendResetCode(to, name, code string) error {
	m.lastCode = code
	return nil
}

type stubTOTP struct{}

func (stubTOTP) Issue(name, email string) (*security.TOTPKey, error) {
	return &security.TOTPKey{Secret: "STUBSECRET", URL: "otpauth://totp/x", QRCodePNG: "data:image/png;base64,x"}, nil
}

func (stubTOTP) Verify(code, secret string) bool {
	return code == testOTPCode && secret == "STUBSECRET"
}

type stubGeo struct{}

func (stubGeo) Resolve(ctx context.Context) (*geo.Location, error) {
	return nil, errors.New("disabled in tests")
}

type testApp struct {
	app    *fiber.App
	mailer *stubMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	repo := infra.NewMemUserRepo(nil)
	cache := infra.NewCache(15*time.Minute, nil)
	mailer := &stubMailer{}
	log := logger.NewDiscard()
	passwords := security.NewPasswords("test-secret")
	cipher := security.NewPinCipher("test-secret", bcrypt.MinCost, 15, nil)
	jwtm := security.NewJWTManager("test-secret", time.Hour)

	registration := service.NewRegistration(repo, cache, mailer, stubTOTP{}, passwords, log, nil)
	pins := service.NewPins(repo, cipher, stubTOTP{}, jwtm, log, nil)
	auth := service.NewAuth(repo, cache, mailer, stubTOTP{}, passwords, stubGeo{}, jwtm,
		2*time.Hour, log, nil)
	sweeper := service.NewSweeper(repo, cache, 6*time.Hour, time.Minute, log)

	module := NewModule(repo, registration, pins, auth, sweeper, "test-secret")
	app := plathttp.NewServer(plathttp.Options{AppName: "paws-test"}, module)
	return &testApp{app: app, mailer: mailer}
}

func (ta *testApp) post(t *testing.T, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	return ta.do(t, http.MethodPost, path, body, headers...)
}

func (ta *testApp) do(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// signup runs the whole registration flow and returns nothing; the
// account ends active and otp-enabled.
func (ta *testApp) signup(t *testing.T, email string) {
	t.Helper()
	status, _ := ta.post(t, "/usuarios/registrar", fiber.Map{
		"str_nombre": "Ana López", "str_correo": email, "str_pass": "Pass123!x",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = ta.post(t, "/usuarios/verificar-codigo-email", fiber.Map{
		"str_correo": email, "codigo": ta.mailer.lastCode,
	})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = ta.post(t, "/usuarios/verificar-otp", fiber.Map{
		"str_correo": email, "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusCreated, status)
}

func TestRoutes_RegistrationFlow(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.post(t, "/usuarios/registrar", fiber.Map{
		"str_nombre": "Ana López", "str_correo": "ana@example.com", "str_pass": "Pass123!x",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Contains(t, body["mensaje"], "Registro iniciado")
	require.Len(t, ta.mailer.lastCode, 6)

	status, body = ta.post(t, "/usuarios/verificar-codigo-email", fiber.Map{
		"str_correo": "ana@example.com", "codigo": ta.mailer.lastCode,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "STUBSECRET", body["secreto"])
	assert.NotEmpty(t, body["qr_code"])

	status, body = ta.post(t, "/usuarios/verificar-otp", fiber.Map{
		"str_correo": "ana@example.com", "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusCreated, status)
	usuario := body["usuario"].(map[string]any)
	assert.Equal(t, true, usuario["activo"])
	assert.Equal(t, true, usuario["otp_activo"])
}

func TestRoutes_Register_Validation(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.post(t, "/usuarios/registrar", fiber.Map{
		"str_nombre": "Ana", "str_correo": "no-es-correo", "str_pass": "Pass123!x",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["error_code"])

	status, body = ta.post(t, "/usuarios/registrar", fiber.Map{
		"str_nombre": "Ana", "str_correo": "ana@example.com", "str_pass": "soloLetras",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "WEAK_PASSWORD", body["error_code"])
}

func TestRoutes_VerifyEmail_WrongCode(t *testing.T) {
	ta := newTestApp(t)
	status, _ := ta.post(t, "/usuarios/registrar", fiber.Map{
		"str_nombre": "Ana López", "str_correo": "ana@example.com", "str_pass": "Pass123!x",
	})
	require.Equal(t, fiber.StatusCreated, status)

	wrong := "000000"
	if ta.mailer.lastCode == wrong {
		wrong = "000001"
	}
	status, body := ta.post(t, "/usuarios/verificar-codigo-email", fiber.Map{
		"str_correo": "ana@example.com", "codigo": wrong,
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_CODE", body["error_code"])
	assert.Equal(t, float64(2), body["intentos_restantes"])
}

func TestRoutes_PinLifecycle(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "ana@example.com")

	status, body := ta.post(t, "/usuarios/configurar-pin", fiber.Map{
		"str_correo": "ana@example.com", "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusCreated, status)
	pin := body["pin"].(string)
	assert.Len(t, pin, 6)
	assert.Equal(t, float64(15), body["dias_validez"])
	require.NotNil(t, body["datos_offline"])

	// a second configure collides with the live pin
	status, body = ta.post(t, "/usuarios/configurar-pin", fiber.Map{
		"str_correo": "ana@example.com", "codigo_otp": testOTPCode,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "PIN_ALREADY_ACTIVE", body["error_code"])

	status, body = ta.post(t, "/usuarios/estado-pin", fiber.Map{"str_correo": "ana@example.com"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "activo", body["estado"])
	assert.Equal(t, float64(15), body["dias_restantes"])

	status, body = ta.post(t, "/usuarios/usar-pin", fiber.Map{
		"str_correo": "ana@example.com", "pin": pin,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])

	// single use: a replay is rejected
	status, body = ta.post(t, "/usuarios/usar-pin", fiber.Map{
		"str_correo": "ana@example.com", "pin": pin,
	})
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NO_ACTIVE_PIN", body["error_code"])

	status, body = ta.post(t, "/usuarios/estado-pin", fiber.Map{"str_correo": "ana@example.com"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "usado", body["estado"])
}

func TestRoutes_UsePinOffline(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "ana@example.com")

	status, body := ta.post(t, "/usuarios/configurar-pin", fiber.Map{
		"str_correo": "ana@example.com", "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusCreated, status)
	pin := body["pin"].(string)

	status, body = ta.post(t, "/usuarios/usar-pin-offline", fiber.Map{
		"datos_offline": body["datos_offline"], "pin": pin,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])
}

func TestRoutes_LoginAndProfile(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "ana@example.com")

	status, body := ta.post(t, "/login", fiber.Map{
		"str_correo": "ana@example.com", "str_pass": "Pass123!x", "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	// a second login collides with the open session
	status, body = ta.post(t, "/login", fiber.Map{
		"str_correo": "ana@example.com", "str_pass": "Pass123!x", "codigo_otp": testOTPCode,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "SESSION_ACTIVE", body["error_code"])

	status, body = ta.do(t, http.MethodGet, "/usuarios/perfil", nil, "Authorization", "Bearer "+token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ana@example.com", body["correo"])

	status, body = ta.do(t, http.MethodGet, "/usuarios/perfil", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error_code"])

	status, _ = ta.post(t, "/logout", nil, "Authorization", "Bearer "+token)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = ta.post(t, "/login", fiber.Map{
		"str_correo": "ana@example.com", "str_pass": "Pass123!x", "codigo_otp": testOTPCode,
	})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRoutes_PasswordReset(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "ana@example.com")

	status, _ := ta.post(t, "/restablecerPassword/solicitarRecuperarPassword", fiber.Map{
		"str_correo": "ana@example.com",
	})
	require.Equal(t, fiber.StatusOK, status)
	code := ta.mailer.lastCode

	status, _ = ta.post(t, "/restablecerPassword/restablecerPassword", fiber.Map{
		"str_correo": "ana@example.com", "codigo": code, "nueva_pass": "Nueva123!x",
	})
	require.Equal(t, fiber.StatusOK, status)

	status, _ = ta.post(t, "/login", fiber.Map{
		"str_correo": "ana@example.com", "str_pass": "Nueva123!x", "codigo_otp": testOTPCode,
	})
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRoutes_SweepStats(t *testing.T) {
	ta := newTestApp(t)
	ta.signup(t, "ana@example.com")

	status, body := ta.post(t, "/login", fiber.Map{
		"str_correo": "ana@example.com", "str_pass": "Pass123!x", "codigo_otp": testOTPCode,
	})
	require.Equal(t, fiber.StatusOK, status)
	token := body["token"].(string)

	status, body = ta.do(t, http.MethodGet, "/admin/estadisticas-limpieza", nil,
		"Authorization", "Bearer "+token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["ejecutandose"])
	assert.Equal(t, float64(0), body["total_limpiados"])
}
