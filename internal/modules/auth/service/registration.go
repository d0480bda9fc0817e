package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// Registration drives the multi-step signup flow. Nothing reaches the
// database until the final step: the draft account and its codes live in
// the ephemeral store and simply evaporate if the user walks away.
//
//	NONE -> PENDING_EMAIL_VERIFICATION -> PENDING_OTP_CONFIRMATION -> ACTIVE
type Registration struct {
	users     domain.UserRepo
	cache     *infra.Cache
	mailer    Mailer
	totp      OTPProvider
	passwords *security.Passwords
	log       *logger.Logger
	now       func() time.Time
}

func NewRegistration(users domain.UserRepo, cache *infra.Cache, mailer Mailer, totp OTPProvider,
	passwords *security.Passwords, log *logger.Logger, now func() time.Time) *Registration {
	if now == nil {
		now = time.Now
	}
	return &Registration{users: users, cache: cache, mailer: mailer, totp: totp,
		passwords: passwords, log: log, now: now}
}

// Begin starts a registration: it parks the draft account in the ephemeral
// store and emails a verification code. If the email cannot be sent the
// draft is rolled back so a retry starts clean.
func (r *Registration) Begin(name, email, password string) error {
	exists, err := r.users.ExistsByEmail(email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrEmailTaken
	}

	hash, err := r.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// the existence check and the insert are one store operation, so two
	// concurrent registrations for the same email resolve to one draft
	if !r.cache.SetIfAbsent(email, domain.PendingRegistration{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUsuario,
		CreatedAt:    r.now(),
	}) {
		return ErrPendingExists
	}

	code, err := issueCode(r.cache, email+infra.KeyEmailCode, r.now)
	if err != nil {
		r.cache.Delete(email)
		return err
	}

	if err := r.mailer.SendVerificationCode(email, name, code); err != nil {
		// no partial state survives a failed send
		r.cache.Delete(email)
		r.cache.Delete(email + infra.KeyEmailCode)
		r.log.Error("verification email dispatch failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// ConfirmEmailCode validates the emailed code and, on success, issues the
// TOTP secret the user must enroll before the account is committed.
// A second confirmation for the same pending registration is an error,
// not a no-op.
func (r *Registration) ConfirmEmailCode(email, code string) (*security.TOTPKey, error) {
	v, ok := r.cache.Get(email)
	if !ok {
		return nil, domain.ErrNotFound
	}
	pending, ok := v.(domain.PendingRegistration)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if pending.EmailVerified {
		return nil, ErrAlreadyVerified
	}

	if err := consumeCode(r.cache, email+infra.KeyEmailCode, code); err != nil {
		if errors.Is(err, ErrAttemptsExceeded) {
			// budget exhausted: the whole flow restarts from scratch
			r.cache.Delete(email)
		}
		return nil, err
	}

	key, err := r.totp.Issue(pending.Name, email)
	if err != nil {
		// the code is already spent; drop the draft so a retry can
		// restart the flow instead of waiting out the TTL
		r.cache.Delete(email)
		return nil, fmt.Errorf("failed to issue totp secret: %w", err)
	}

	pending.TOTPSecret = key.Secret
	pending.EmailVerified = true
	if !r.cache.Update(email, pending) {
		// pending expired between the code check and the merge
		return nil, domain.ErrNotFound
	}
	return key, nil
}

// ConfirmOTPAndActivate validates a current TOTP code against the pending
// secret and commits the durable account, active and OTP-enabled, in one
// step. The pending registration is deleted only after the row exists.
func (r *Registration) ConfirmOTPAndActivate(email, code string) (*domain.User, error) {
	v, ok := r.cache.Get(email)
	if !ok {
		return nil, domain.ErrNotFound
	}
	pending, ok := v.(domain.PendingRegistration)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !pending.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if !r.totp.Verify(code, pending.TOTPSecret) {
		return nil, ErrWrongOTP
	}

	u, err := r.users.Create(domain.CreateUserParams{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         pending.Role,
		TOTPSecret:   pending.TOTPSecret,
		OTPEnabled:   true,
		Active:       true,
	})
	if err != nil {
		return nil, err
	}

	r.cache.Delete(email)
	return u, nil
}
