package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
)

var (
	ErrPendingExists    = errors.New("pending_registration_exists")
	ErrDispatchFailed   = errors.New("email_dispatch_failed")
	ErrAlreadyVerified  = errors.New("email_already_verified")
	ErrCodeExpired      = errors.New("code_expired")
	ErrAttemptsExceeded = errors.New("code_attempts_exceeded")
	ErrEmailNotVerified = errors.New("email_not_verified")
	ErrWrongOTP         = errors.New("wrong_otp")

	ErrPinAlreadyLive = errors.New("pin_already_live")
	ErrWrongPin       = errors.New("wrong_pin")

	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
)

// WrongCodeError reports a failed verification attempt and how many
// remain before the code is force-deleted.
type WrongCodeError struct {
	AttemptsLeft int
}

func (e *WrongCodeError) Error() string {
	return fmt.Sprintf("wrong_code: %d attempts left", e.AttemptsLeft)
}

// NotEligibleError explains why an account cannot configure a PIN.
type NotEligibleError struct {
	Reason domain.PinEligibility
}

func (e *NotEligibleError) Error() string {
	return "pin_not_eligible: " + string(e.Reason)
}

// SessionActiveError rejects a login while another session is open.
type SessionActiveError struct {
	Remaining time.Duration
}

func (e *SessionActiveError) Error() string {
	return fmt.Sprintf("session_active: %s remaining", e.Remaining)
}
