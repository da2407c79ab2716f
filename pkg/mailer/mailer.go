package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/togetherwethrive/enquiry-api/config"
)

// Address is a display name / email pair used in message headers
type Address struct {
	Name  string
	Email string
}

// String renders the address for use in a mail header
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Message is a transport-ready notification. Reply-To points at the human
// submitter so replies bypass the no-reply sending account.
type Message struct {
	ReplyTo Address
	Subject string
	Body    string
}

// Dispatcher delivers a composed message to the configured mailbox
type Dispatcher interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer sends messages through a fixed relay over implicit TLS
// (SMTPS, typically port 465 - TLS on connect, not STARTTLS).
// One message, one connection attempt, no retries.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     Address
	to       string
	timeout  time.Duration
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     Address{Name: cfg.FromName, Email: cfg.Username},
		to:       cfg.ToAddress,
		timeout:  timeout,
	}
}

// Send delivers the message. Any failure is returned immediately; callers
// must not surface the transport detail to end clients.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))

	deadline := time.Now().Add(m.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("failed to connect to mail relay: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set relay deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(m.from.Email); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(m.to); err != nil {
		return fmt.Errorf("RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(BuildMIME(m.from, m.to, msg)); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message not accepted by relay: %w", err)
	}

	return client.Quit()
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// headerValue strips CR/LF from a header-bound value. Several header fields
// carry submitter-controlled text (name, subject); a raw newline there would
// let the sender smuggle extra headers such as Bcc through the authenticated
// relay.
func headerValue(v string) string {
	return headerSanitizer.Replace(v)
}

// BuildMIME renders the full RFC 5322 message as sent on the wire
func BuildMIME(from Address, to string, msg *Message) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Reply-To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		headerValue(from.String()),
		headerValue(to),
		headerValue(msg.ReplyTo.String()),
		headerValue(msg.Subject),
		msg.Body,
	))
}
