package domain

import "time"

// PinStatus values are wire-format strings reported by the status endpoint.
type PinStatus string

const (
	PinSinConfigurar PinStatus = "sin_configurar"
	PinDesactivado   PinStatus = "desactivado"
	PinExpirado      PinStatus = "expirado"
	PinUsado         PinStatus = "usado"
	PinActivo        PinStatus = "activo"
)

// HasLivePin is the one place the live-PIN invariant is written down. Both
// the configure path and the status path go through here so they cannot
// disagree: a PIN is live iff it is enabled, has a value, has not expired
// and has not been used.
func HasLivePin(u *User, now time.Time) bool {
	return u.PinEnabled &&
		u.PinHash != nil &&
		u.PinExpiresAt != nil &&
		u.PinExpiresAt.After(now) &&
		!u.PinUsed
}

// PinStatusOf computes the reported status with a fixed precedence:
// no value > disabled > expired > used > active. Consumption flips the
// enabled flag off together with the used flag, so "desactivado" is
// reserved for a pin disabled without ever being spent; a spent pin
// reports "usado" (or "expirado" once its window also lapses).
func PinStatusOf(u *User, now time.Time) PinStatus {
	switch {
	case u.PinHash == nil:
		return PinSinConfigurar
	case !u.PinEnabled && !u.PinUsed:
		return PinDesactivado
	case u.PinExpiresAt == nil || !u.PinExpiresAt.After(now):
		return PinExpirado
	case u.PinUsed:
		return PinUsado
	default:
		return PinActivo
	}
}

// PinEligibility explains why an account may not configure a PIN.
type PinEligibility string

const (
	PinEligibleOK       PinEligibility = "ok"
	PinUserMissing      PinEligibility = "usuario_no_encontrado"
	PinAccountInactive  PinEligibility = "cuenta_inactiva"
	PinOTPNotConfigured PinEligibility = "otp_no_configurado"
)

// PinEligibilityOf gates PIN configuration: the account must exist, be
// active and have OTP enabled.
func PinEligibilityOf(u *User) PinEligibility {
	switch {
	case u == nil:
		return PinUserMissing
	case !u.Active:
		return PinAccountInactive
	case !u.OTPEnabled:
		return PinOTPNotConfigured
	default:
		return PinEligibleOK
	}
}
