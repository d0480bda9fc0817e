package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PinCipher generates, hashes and seals single-use PINs. The keyspace is
// tiny (10^6), so the hash cost stays high to resist offline brute force,
// and the application secret is mixed into every hash.
type PinCipher struct {
	secret       string
	cost         int
	validityDays int
	now          func() time.Time
}

// OfflineBundle is the client-side cacheable form of a freshly issued PIN:
// an AES-GCM ciphertext of the envelope, the hex nonce used as IV, and an
// integrity token over email, pin and issue time.
type OfflineBundle struct {
	EncryptedData string `json:"encrypted_data"`
	IV            string `json:"iv"`
	Token         string `json:"token"`
}

// OfflineEnvelope is what the bundle decrypts to.
type OfflineEnvelope struct {
	Email     string `json:"correo"`
	Pin       string `json:"pin"`
	IssuedAt  int64  `json:"emitido"`
	ExpiresAt int64  `json:"expira"`
}

func NewPinCipher(secret string, cost, validityDays int, now func() time.Time) *PinCipher {
	if now == nil {
		now = time.Now
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &PinCipher{secret: secret, cost: cost, validityDays: validityDays, now: now}
}

func (p *PinCipher) ValidityDays() int { return p.validityDays }

// Generate draws a uniform 6-digit PIN in [100000, 999999].
func (p *PinCipher) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Hash produces a bcrypt digest of pin∥secret.
func (p *PinCipher) Hash(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin+p.secret), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(b), nil
}

// Verify reports whether pin matches the stored digest. bcrypt's own
// comparison is used, so timing does not leak the match position.
func (p *PinCipher) Verify(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin+p.secret)) == nil
}

// ExpiryDate is createdAt plus the validity window in calendar days.
func (p *PinCipher) ExpiryDate(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, p.validityDays)
}

// DaysRemaining is the ceiling of the time left before expiry in days,
// clamped at zero once expired.
func (p *PinCipher) DaysRemaining(expiresAt time.Time) int {
	left := expiresAt.Sub(p.now())
	if left <= 0 {
		return 0
	}
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// SealOffline encrypts the PIN envelope with AES-256-GCM under a key
// derived from the application secret, for client-side caching.
func (p *PinCipher) SealOffline(email, pin string) (*OfflineBundle, error) {
	issued := p.now()
	env := OfflineEnvelope{
		Email:     email,
		Pin:       pin,
		IssuedAt:  issued.UnixMilli(),
		ExpiresAt: p.ExpiryDate(issued).UnixMilli(),
	}
	plaintext, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}

	aesgcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return &OfflineBundle{
		EncryptedData: hex.EncodeToString(ciphertext),
		IV:            hex.EncodeToString(nonce),
		Token:         p.offlineToken(email, pin, env.IssuedAt),
	}, nil
}

// UnsealOffline decrypts a bundle and checks its integrity token.
func (p *PinCipher) UnsealOffline(b *OfflineBundle) (*OfflineEnvelope, error) {
	ciphertext, err := hex.DecodeString(b.EncryptedData)
	if err != nil {
		return nil, fmt.Errorf("invalid encrypted data: %w", err)
	}
	nonce, err := hex.DecodeString(b.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	aesgcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt offline data: %w", err)
	}
	var env OfflineEnvelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return nil, err
	}
	if p.offlineToken(env.Email, env.Pin, env.IssuedAt) != b.Token {
		return nil, fmt.Errorf("offline token mismatch")
	}
	return &env, nil
}

func (p *PinCipher) gcm() (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(p.secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (p *PinCipher) offlineToken(email, pin string, issuedAt int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d", email, pin, issuedAt)))
	return hex.EncodeToString(sum[:])
}
