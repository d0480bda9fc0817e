package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends verification-code emails over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// SendVerificationCode delivers the 6-digit registration code.
func (m *Mailer) SendVerificationCode(to, name, code string) error {
	body := fmt.Sprintf(`<h2>¡Hola %s!</h2>
<p>Tu código de verificación para completar el registro en PAWS es:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:8px;">%s</p>
<p><strong>Este código expirará en 15 minutos.</strong></p>
<p>Una vez que verifiques tu correo, podrás configurar tu autenticación de dos factores (2FA).</p>
<p>No compartas este código con nadie.</p>`, name, code)
	return m.send(to, "Código de verificación - PAWS", body)
}

// SendResetCode delivers the 6-digit password-recovery code.
func (m *Mailer) SendResetCode(to, name, code string) error {
	body := fmt.Sprintf(`<h2>Hola %s</h2>
<p>Tu código para restablecer la contraseña es:</p>
<p style="font-size:32px;font-weight:bold;letter-spacing:8px;">%s</p>
<p><strong>Este código expirará en 15 minutos.</strong></p>
<p>Si no solicitaste este cambio, puedes ignorar este correo.</p>`, name, code)
	return m.send(to, "Restablecer contraseña - PAWS", body)
}
