package security

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testCipher(t *testing.T, now func() time.Time) *PinCipher {
	t.Helper()
	// min cost keeps the bcrypt rounds cheap in tests
	return NewPinCipher("app-secret", bcrypt.MinCost, 15, now)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestPinCipher_Generate(t *testing.T) {
	c := testCipher(t, fixedNow)
	six := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		pin, err := c.Generate()
		require.NoError(t, err)
		assert.Regexp(t, six, pin)
		assert.GreaterOrEqual(t, pin, "100000")
	}
}

func TestPinCipher_HashVerify(t *testing.T) {
	c := testCipher(t, fixedNow)

	hash, err := c.Hash("482913")
	require.NoError(t, err)
	assert.NotContains(t, hash, "482913")

	assert.True(t, c.Verify("482913", hash))
	assert.False(t, c.Verify("482914", hash))

	// a cipher with a different secret must reject the same pin
	other := NewPinCipher("other-secret", bcrypt.MinCost, 15, fixedNow)
	assert.False(t, other.Verify("482913", hash))
}

func TestPinCipher_ExpiryAndDaysRemaining(t *testing.T) {
	clock := fixedNow()
	c := testCipher(t, func() time.Time { return clock })

	expires := c.ExpiryDate(clock)
	assert.Equal(t, clock.AddDate(0, 0, 15), expires)
	assert.Equal(t, 15, c.DaysRemaining(expires))

	// partial days round up
	clock = clock.Add(36 * time.Hour)
	assert.Equal(t, 14, c.DaysRemaining(expires))

	clock = fixedNow().AddDate(0, 0, 15)
	assert.Equal(t, 0, c.DaysRemaining(expires))
	clock = clock.AddDate(0, 0, 10)
	assert.Equal(t, 0, c.DaysRemaining(expires))
}

func TestPinCipher_OfflineRoundtrip(t *testing.T) {
	c := testCipher(t, fixedNow)

	bundle, err := c.SealOffline("ana@example.com", "482913")
	require.NoError(t, err)
	assert.NotEmpty(t, bundle.EncryptedData)
	assert.NotEmpty(t, bundle.IV)
	assert.NotEmpty(t, bundle.Token)
	assert.NotContains(t, bundle.EncryptedData, "482913")

	env, err := c.UnsealOffline(bundle)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", env.Email)
	assert.Equal(t, "482913", env.Pin)
	assert.Equal(t, fixedNow().UnixMilli(), env.IssuedAt)
	assert.Equal(t, fixedNow().AddDate(0, 0, 15).UnixMilli(), env.ExpiresAt)
}

func TestPinCipher_OfflineTamperDetected(t *testing.T) {
	c := testCipher(t, fixedNow)

	bundle, err := c.SealOffline("ana@example.com", "482913")
	require.NoError(t, err)

	tampered := *bundle
	if tampered.EncryptedData[0] == 'a' {
		tampered.EncryptedData = "b" + tampered.EncryptedData[1:]
	} else {
		tampered.EncryptedData = "a" + tampered.EncryptedData[1:]
	}
	_, err = c.UnsealOffline(&tampered)
	assert.Error(t, err)

	// a bundle sealed under a different secret must not open
	other := NewPinCipher("other-secret", bcrypt.MinCost, 15, fixedNow)
	_, err = other.UnsealOffline(bundle)
	assert.Error(t, err)
}
