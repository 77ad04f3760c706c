package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer is the outbound email transport. Delivery is best-effort: callers
// log and swallow failures, a lost email never rolls anything back.
type Mailer interface {
	Send(subject, from, to, html, text string) error
}

// SMTPMailer sends multipart/alternative mail through a plain SMTP relay.
type SMTPMailer struct {
	Addr     string // host:port
	Username string
	Password string
	Host     string // hostname for AUTH, derived from Addr when empty
}

// NewSMTPMailer creates an SMTPMailer for the given relay address.
func NewSMTPMailer(addr, username, password string) *SMTPMailer {
	host := addr
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
	}
	return &SMTPMailer{Addr: addr, Username: username, Password: password, Host: host}
}

func (m *SMTPMailer) Send(subject, from, to, html, text string) error {
	const boundary = "=_clearforum_alt"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(m.Addr, auth, from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
