package service

import (
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// issueCode generates a 6-digit code and stores it under key for the
// cache's TTL.
func issueCode(cache *infra.Cache, key string, now func() time.Time) (string, error) {
	code, err := security.RandomDigits(6)
	if err != nil {
		return "", err
	}
	cache.Set(key, domain.VerificationCode{
		Code:      code,
		ExpiresAt: now().Add(cache.TTL()),
	})
	return code, nil
}

// consumeCode checks a submitted code against the stored one. Exact match
// required; a match deletes the entry (single use). A mismatch burns one
// of the three attempts without extending the code's lifetime, and
// exhausting the budget force-deletes it. The whole check-and-count runs
// inside one store mutation so parallel guesses cannot lose increments.
func consumeCode(cache *infra.Cache, key, code string) error {
	var result error
	found := cache.Mutate(key, func(data any) (any, bool) {
		vc, ok := data.(domain.VerificationCode)
		if !ok {
			result = ErrCodeExpired
			return nil, false
		}
		vc.Attempts++
		if vc.Attempts > domain.MaxCodeAttempts {
			result = ErrAttemptsExceeded
			return nil, false
		}
		if vc.Code != code {
			result = &WrongCodeError{AttemptsLeft: domain.MaxCodeAttempts - vc.Attempts}
			return vc, true
		}
		return nil, false
	})
	if !found {
		return ErrCodeExpired
	}
	return result
}
