// Package mailer delivers transactional email over SMTP. There is no
// queue or retry; a failed send surfaces to the caller, which decides
// whether the request fails (verification codes) or is logged and
// ignored (best-effort registration mail).
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/financas-app/financas-backend/internal/config"
)

// Mailer is the outbound-mail interface handlers and services depend
// on, so tests can substitute an in-memory recorder.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// SMTPMailer sends mail through a plain or implicit-TLS SMTP server.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send writes a single HTML message. Returns an error when SMTP is not
// configured so callers never silently drop a code email.
func (m *SMTPMailer) Send(_ context.Context, to, subject, html string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp não configurado")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(html)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if m.cfg.Secure {
		return m.sendTLS(addr, to, msg.String())
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String()))
}

func (m *SMTPMailer) sendTLS(addr, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Quit()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	return w.Close()
}

// VerificationBody renders the account-confirmation email.
func VerificationBody(code string) string {
	return fmt.Sprintf(`
      <h1>Confirmação de E-mail</h1>
      <p>Olá,</p>
      <p>Use o código abaixo para confirmar o seu cadastro:</p>
      <h2 style="color: #2c3e50;">%s</h2>
      <p>Este código expira em 5 minutos.</p>
      <p>Se você não solicitou essa ação, ignore este e-mail.</p>`, code)
}

// ResetBody renders the password-recovery email.
func ResetBody(code string) string {
	return fmt.Sprintf(`
      <h1>Recuperação de Senha</h1>
      <p>Olá,</p>
      <p>Seu código de recuperação chegou! Use o código abaixo para redefinir sua senha:</p>
      <h2 style="color: #2c3e50;">%s</h2>
      <p>Este código expira em 5 minutos.</p>
      <p>Se você não solicitou essa ação, ignore este e-mail.</p>`, code)
}
