package domain

import "time"

// PendingRegistration is the not-yet-committed account draft held in the
// ephemeral store, keyed by email, while the signup flow runs. It never
// touches the database.
type PendingRegistration struct {
	Name          string
	Email         string
	PasswordHash  string
	Role          int
	EmailVerified bool
	TOTPSecret    string // set when the email code is verified
	CreatedAt     time.Time
}

// VerificationCode is a 6-digit emailed code (signup or password reset)
// held in the ephemeral store. Expiry is the store's TTL; ExpiresAt is
// kept for reporting.
type VerificationCode struct {
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// MaxCodeAttempts is the attempt budget before a code is force-deleted.
const MaxCodeAttempts = 3

// SessionMarker tracks an open login session in the ephemeral store so the
// sweeper can flip session_active off once it times out.
type SessionMarker struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}
