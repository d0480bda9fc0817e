package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP issues and verifies time-based one-time codes for 2FA enrollment.
type TOTP struct {
	issuer string
}

// TOTPKey is a freshly issued shared secret with its enrollment helpers.
type TOTPKey struct {
	Secret    string // base32, stored on the account
	URL       string // otpauth:// URL for manual entry
	QRCodePNG string // base64 PNG for display
}

func NewTOTP(issuer string) *TOTP {
	return &TOTP{issuer: issuer}
}

// Issue generates a new shared secret labeled with the user's name and
// keyed to their email, plus a QR code for authenticator apps.
func (t *TOTP) Issue(name, email string) (*TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.issuer,
		AccountName: fmt.Sprintf("%s - %s", name, email),
		Period:      30,
		SecretSize:  20,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp secret: %w", err)
	}
	img, err := key.Image(200, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &TOTPKey{
		Secret:    key.Secret(),
		URL:       key.URL(),
		QRCodePNG: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// Verify checks a 6-digit code against the stored secret, allowing a skew
// of two 30-second steps either way for clock drift.
func (t *TOTP) Verify(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
