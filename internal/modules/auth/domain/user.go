package domain

import (
	"errors"
	"time"
)

const (
	RoleUsuario = 1
	RoleAdmin   = 2
)

var (
	ErrNotFound    = errors.New("not_found")
	ErrEmailTaken  = errors.New("email_taken")
	ErrNoLivePin   = errors.New("no_live_pin")
	ErrPinRejected = errors.New("pin_rejected") // conditional update matched no row
)

// User is the durable account row. The pin_* columns hold the single-use
// PIN sub-state; plaintext PINs never reach this struct.
type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	Role          int
	TOTPSecret    *string
	OTPEnabled    bool
	PinHash       *string
	PinEnabled    bool
	PinExpiresAt  *time.Time
	PinUsed       bool
	PinCreatedAt  *time.Time
	Active        bool
	SessionActive bool
	LastAccess    time.Time
	Location      *string
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         int
	TOTPSecret   string
	OTPEnabled   bool
	Active       bool
}

type UserRepo interface {
	Create(p CreateUserParams) (*User, error)
	GetByEmail(email string) (*User, error)
	ExistsByEmail(email string) (bool, error)

	// ConfigurePin is a single conditional update: it only matches an
	// active, OTP-enabled account without a live PIN. ErrPinRejected means
	// no row matched; the caller must re-read to find out why.
	ConfigurePin(email, pinHash string, createdAt, expiresAt time.Time) (*User, error)
	// FindWithLivePin returns the account only while the live-PIN invariant
	// holds (enabled, value set, unexpired, unused), otherwise ErrNoLivePin.
	FindWithLivePin(email string) (*User, error)
	// ConsumePin marks the PIN used and disables it in one conditional
	// update. ErrNoLivePin when zero rows match: a concurrent consumer won,
	// or the PIN expired between read and write. Callers must fail closed.
	ConsumePin(email string) error
	// SweepExpiredOrUsedPins clears the pin fields on every row whose PIN is
	// past expiry or already used; returns the number of rows cleaned.
	SweepExpiredOrUsedPins() (int64, error)

	UpdatePassword(email, newHash string) error
	TouchLastAccess(email string) error
	UpdateLocation(email, location string) error
	SetSessionActive(email string, active bool) error
}
