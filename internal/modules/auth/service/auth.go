package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// Auth handles login and password recovery.
type Auth struct {
	users      domain.UserRepo
	cache      *infra.Cache
	mailer     Mailer
	totp       OTPProvider
	passwords  *security.Passwords
	geo        GeoResolver
	jwt        *security.JWTManager
	sessionTTL time.Duration
	log        *logger.Logger
	now        func() time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

func NewAuth(users domain.UserRepo, cache *infra.Cache, mailer Mailer, totp OTPProvider,
	passwords *security.Passwords, geo GeoResolver, jwt *security.JWTManager,
	sessionTTL time.Duration, log *logger.Logger, now func() time.Time) *Auth {
	if now == nil {
		now = time.Now
	}
	return &Auth{users: users, cache: cache, mailer: mailer, totp: totp, passwords: passwords,
		geo: geo, jwt: jwt, sessionTTL: sessionTTL, log: log, now: now}
}

// Login validates credentials and, when OTP is enabled, a current TOTP
// code. Unknown accounts and bad passwords collapse into one generic
// error so an attacker cannot probe for registered emails. Location
// lookup is best effort and never blocks the login.
func (a *Auth) Login(ctx context.Context, email, password, otpCode string) (*LoginResult, error) {
	u, err := a.users.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := a.passwords.Check(u.PasswordHash, password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrAccountInactive
	}

	if u.OTPEnabled {
		if u.TOTPSecret == nil || !a.totp.Verify(otpCode, *u.TOTPSecret) {
			return nil, ErrWrongOTP
		}
	}

	// claiming the session slot is a single conditional insert, so two
	// concurrent logins resolve to one open session
	marker := domain.SessionMarker{
		ID:        uuid.NewString(),
		Email:     email,
		ExpiresAt: a.now().Add(a.sessionTTL),
	}
	if !a.cache.SetIfAbsentTTL(email+infra.KeySession, marker, a.sessionTTL) {
		remaining := a.sessionTTL
		if v, live := a.cache.Get(email + infra.KeySession); live {
			if m, isMarker := v.(domain.SessionMarker); isMarker {
				remaining = m.ExpiresAt.Sub(a.now())
			}
		}
		return nil, &SessionActiveError{Remaining: remaining}
	}

	if err := a.users.TouchLastAccess(email); err != nil {
		return nil, err
	}

	if loc, err := a.geo.Resolve(ctx); err != nil {
		a.log.Debug("geolocation lookup skipped", "email", email, "error", err)
	} else if raw, err := json.Marshal(loc); err == nil {
		if err := a.users.UpdateLocation(email, string(raw)); err != nil {
			a.log.Warn("failed to store location", "email", email, "error", err)
		}
	}

	if err := a.users.SetSessionActive(email, true); err != nil {
		return nil, err
	}

	token, exp, err := a.jwt.IssueAccess(u.ID, u.Email, u.Role, "login")
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// RequestPasswordReset emails a 6-digit recovery code. Unlike login this
// does report a missing account.
func (a *Auth) RequestPasswordReset(email string) error {
	u, err := a.users.GetByEmail(email)
	if err != nil {
		return err
	}

	code, err := issueCode(a.cache, email+infra.KeyResetCode, a.now)
	if err != nil {
		return err
	}
	if err := a.mailer.SendResetCode(email, u.Name, code); err != nil {
		a.cache.Delete(email + infra.KeyResetCode)
		a.log.Error("reset email dispatch failed", "email", email, "error", err)
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// ResetPassword verifies the recovery code (same 3-attempt budget as the
// signup code) and replaces the password hash.
func (a *Auth) ResetPassword(email, code, newPassword string) error {
	if _, err := a.users.GetByEmail(email); err != nil {
		return err
	}
	if err := consumeCode(a.cache, email+infra.KeyResetCode, code); err != nil {
		return err
	}
	hash, err := a.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.users.UpdatePassword(email, hash)
}

// Logout drops the session marker and flips session_active off.
func (a *Auth) Logout(email string) error {
	a.cache.Delete(email + infra.KeySession)
	err := a.users.SetSessionActive(email, false)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
