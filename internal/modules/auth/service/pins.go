package service

import (
	"errors"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// Pins owns the single-use PIN lifecycle: configuration gated by a TOTP
// code, exactly-once consumption, and status reporting.
type Pins struct {
	users  domain.UserRepo
	cipher *security.PinCipher
	totp   OTPProvider
	jwt    *security.JWTManager
	log    *logger.Logger
	now    func() time.Time
}

// PinIssued is the one and only response carrying a PIN in plaintext.
type PinIssued struct {
	Pin          string
	ExpiresAt    time.Time
	ValidityDays int
	Offline      *security.OfflineBundle
}

// PinStatusReport is the computed status of an account's PIN.
type PinStatusReport struct {
	Status        domain.PinStatus
	DaysRemaining int
	ExpiresAt     *time.Time
	LastAccess    time.Time
}

func NewPins(users domain.UserRepo, cipher *security.PinCipher, totp OTPProvider,
	jwt *security.JWTManager, log *logger.Logger, now func() time.Time) *Pins {
	if now == nil {
		now = time.Now
	}
	return &Pins{users: users, cipher: cipher, totp: totp, jwt: jwt, log: log, now: now}
}

// Configure issues a fresh PIN for an active, OTP-enabled account after
// checking a current TOTP code. The plaintext is surfaced here exactly
// once; only the digest is persisted. Rejected while a live PIN exists.
func (p *Pins) Configure(email, otpCode string) (*PinIssued, error) {
	u, err := p.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if elig := domain.PinEligibilityOf(u); elig != domain.PinEligibleOK {
		return nil, &NotEligibleError{Reason: elig}
	}
	if domain.HasLivePin(u, p.now()) {
		return nil, ErrPinAlreadyLive
	}
	if u.TOTPSecret == nil || !p.totp.Verify(otpCode, *u.TOTPSecret) {
		return nil, ErrWrongOTP
	}

	pin, err := p.cipher.Generate()
	if err != nil {
		return nil, err
	}
	hash, err := p.cipher.Hash(pin)
	if err != nil {
		return nil, err
	}
	createdAt := p.now()
	expiresAt := p.cipher.ExpiryDate(createdAt)

	if _, err := p.users.ConfigurePin(email, hash, createdAt, expiresAt); err != nil {
		if errors.Is(err, domain.ErrPinRejected) {
			// the conditional update lost: re-read to report why
			return nil, p.explainRejection(email)
		}
		return nil, err
	}

	offline, err := p.cipher.SealOffline(email, pin)
	if err != nil {
		return nil, err
	}
	return &PinIssued{
		Pin:          pin,
		ExpiresAt:    expiresAt,
		ValidityDays: p.cipher.ValidityDays(),
		Offline:      offline,
	}, nil
}

// Consume spends a live PIN. Two concurrent consumers resolve in the
// store: exactly one wins, the other sees ErrNoLivePin even though its
// earlier read said the PIN was live. Returns a scoped access token.
func (p *Pins) Consume(email, pin string) (string, error) {
	u, err := p.users.FindWithLivePin(email)
	if err != nil {
		return "", err
	}
	if !p.cipher.Verify(pin, *u.PinHash) {
		return "", ErrWrongPin
	}
	if err := p.users.ConsumePin(email); err != nil {
		return "", err
	}
	token, _, err := p.jwt.IssueAccess(u.ID, u.Email, u.Role, "pin")
	return token, err
}

// ConsumeOffline unseals a client-cached bundle, cross-checks the
// submitted PIN and the envelope's own expiry, then consumes normally.
func (p *Pins) ConsumeOffline(bundle *security.OfflineBundle, pin string) (string, error) {
	env, err := p.cipher.UnsealOffline(bundle)
	if err != nil {
		return "", ErrWrongPin
	}
	if env.Pin != pin {
		return "", ErrWrongPin
	}
	if time.UnixMilli(env.ExpiresAt).Before(p.now()) {
		return "", domain.ErrNoLivePin
	}
	return p.Consume(env.Email, pin)
}

// Status computes the reported PIN state for an account.
func (p *Pins) Status(email string) (*PinStatusReport, error) {
	u, err := p.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	report := &PinStatusReport{
		Status:     domain.PinStatusOf(u, p.now()),
		ExpiresAt:  u.PinExpiresAt,
		LastAccess: u.LastAccess,
	}
	if report.Status == domain.PinActivo && u.PinExpiresAt != nil {
		report.DaysRemaining = p.cipher.DaysRemaining(*u.PinExpiresAt)
	}
	return report, nil
}

func (p *Pins) explainRejection(email string) error {
	u, err := p.users.GetByEmail(email)
	if err != nil {
		return err
	}
	if elig := domain.PinEligibilityOf(u); elig != domain.PinEligibleOK {
		return &NotEligibleError{Reason: elig}
	}
	if domain.HasLivePin(u, p.now()) {
		return ErrPinAlreadyLive
	}
	return domain.ErrPinRejected
}
