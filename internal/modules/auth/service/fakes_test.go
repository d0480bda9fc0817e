package service

import (
	"context"
	"errors"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/platform/geo"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/security"
)

// fakeClock drives expiry in tests without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type sentMail struct {
	To   string
	Name string
	Code string
}

// fakeMailer records every dispatch and can be told to fail.
type fakeMailer struct {
	fail          bool
	verifications []sentMail
	resets        []sentMail
}

func (m *fakeMailer) SendVerificationCode(to, name, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.verifications = append(m.verifications, sentMail{To: to, Name: name, Code: code})
	return nil
}

func (m *fakeMailer) SendResetCode(to, name, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.resets = append(m.resets, sentMail{To: to, Name: name, Code: code})
	return nil
}

func (m *fakeMailer) lastVerification() sentMail { return m.verifications[len(m.verifications)-1] }
func (m *fakeMailer) lastReset() sentMail        { return m.resets[len(m.resets)-1] }

const fakeOTPCode = "123456"

// fakeTOTP accepts exactly fakeOTPCode against the secret it issued.
type fakeTOTP struct {
	issueErr error
}

func (f *fakeTOTP) Issue(name, email string) (*security.TOTPKey, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &security.TOTPKey{
		Secret:    "FAKESECRET",
		URL:       "otpauth://totp/PAWS:" + email,
		QRCodePNG: "data:image/png;base64,xxxx",
	}, nil
}

func (f *fakeTOTP) Verify(code, secret string) bool {
	return code == fakeOTPCode && secret == "FAKESECRET"
}

// fakeGeo returns a fixed position or an error.
type fakeGeo struct {
	fail bool
}

func (g *fakeGeo) Resolve(ctx context.Context) (*geo.Location, error) {
	if g.fail {
		return nil, errors.New("no api key")
	}
	return &geo.Location{Lat: 19.43, Lng: -99.13, Accuracy: 20}, nil
}
