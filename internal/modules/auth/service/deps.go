package service

import (
	"context"

	"github.com/oscarrryeezus/PAWS-backend/internal/platform/geo"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// Mailer is the email-dispatch collaborator. A send failure is fatal to
// the step that triggered it; callers roll back their ephemeral state.
type Mailer interface {
	SendVerificationCode(to, name, code string) error
	SendResetCode(to, name, code string) error
}

// OTPProvider issues TOTP secrets and verifies codes against them.
type OTPProvider interface {
	Issue(name, email string) (*security.TOTPKey, error)
	Verify(code, secret string) bool
}

// GeoResolver is the best-effort location lookup used at login.
type GeoResolver interface {
	Resolve(ctx context.Context) (*geo.Location, error)
}
