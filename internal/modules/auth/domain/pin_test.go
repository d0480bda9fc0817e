package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func timePtr(t time.Time) *time.Time { return &t }

func TestHasLivePin(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"live", User{PinEnabled: true, PinHash: strPtr("h"), PinExpiresAt: timePtr(now.Add(time.Hour))}, true},
		{"no hash", User{PinEnabled: true, PinExpiresAt: timePtr(now.Add(time.Hour))}, false},
		{"disabled", User{PinHash: strPtr("h"), PinExpiresAt: timePtr(now.Add(time.Hour))}, false},
		{"expired", User{PinEnabled: true, PinHash: strPtr("h"), PinExpiresAt: timePtr(now.Add(-time.Second))}, false},
		{"expires exactly now", User{PinEnabled: true, PinHash: strPtr("h"), PinExpiresAt: timePtr(now)}, false},
		{"used", User{PinEnabled: true, PinHash: strPtr("h"), PinExpiresAt: timePtr(now.Add(time.Hour)), PinUsed: true}, false},
		{"no expiry", User{PinEnabled: true, PinHash: strPtr("h")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasLivePin(&tt.user, now))
		})
	}
}

func TestPinStatusOf_Precedence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := timePtr(now.Add(-time.Hour))
	future := timePtr(now.Add(time.Hour))

	tests := []struct {
		name string
		user User
		want PinStatus
	}{
		{"never configured", User{}, PinSinConfigurar},
		// disabled covers only pins switched off before being spent
		{"disabled and unused wins over expired", User{PinHash: strPtr("h"), PinExpiresAt: past}, PinDesactivado},
		{"expired wins over used", User{PinHash: strPtr("h"), PinEnabled: true, PinExpiresAt: past, PinUsed: true}, PinExpirado},
		// consumption flips enabled off with used on; it must read as used
		{"consumed reports used, not disabled", User{PinHash: strPtr("h"), PinExpiresAt: future, PinUsed: true}, PinUsado},
		{"missing expiry counts as expired", User{PinHash: strPtr("h"), PinEnabled: true}, PinExpirado},
		{"used", User{PinHash: strPtr("h"), PinEnabled: true, PinExpiresAt: future, PinUsed: true}, PinUsado},
		{"active", User{PinHash: strPtr("h"), PinEnabled: true, PinExpiresAt: future}, PinActivo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PinStatusOf(&tt.user, now))
		})
	}
}

func TestPinEligibilityOf(t *testing.T) {
	assert.Equal(t, PinUserMissing, PinEligibilityOf(nil))
	assert.Equal(t, PinAccountInactive, PinEligibilityOf(&User{Active: false, OTPEnabled: true}))
	assert.Equal(t, PinOTPNotConfigured, PinEligibilityOf(&User{Active: true}))
	assert.Equal(t, PinEligibleOK, PinEligibilityOf(&User{Active: true, OTPEnabled: true}))
}
