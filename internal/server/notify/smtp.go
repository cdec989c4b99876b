package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	verifySubject = "Verify Your Email - Facial Analyzer"
	resetSubject  = "Reset Your Password - Facial Analyzer"
)

// SMTPConfig описывает SMTP сервер и отправителя
type SMTPConfig struct {
	Host     string
	Username string
	Password string
	From     string
	Port     int
	Timeout  time.Duration
	// ImplicitTLS включает TLS с первого байта (порт 465); иначе используется STARTTLS, если сервер его поддерживает
	ImplicitTLS bool
}

// sendFunc доставляет готовое RFC 5322 сообщение одному получателю
type sendFunc func(ctx context.Context, to string, msg []byte) error

// SMTPMailer renders HTML emails from embedded templates and sends them over SMTP.
type SMTPMailer struct {
	cfg       SMTPConfig
	links     Links
	logger    *slog.Logger
	verify    *template.Template
	reset     *template.Template
	send      sendFunc
	now       func() time.Time
	verifyTTL time.Duration
	resetTTL  time.Duration
}

// NewSMTPMailer parses the templates and returns a ready mailer.
// verifyTTL and resetTTL are only used for the "link expires in" line.
func NewSMTPMailer(cfg SMTPConfig, links Links, verifyTTL, resetTTL time.Duration, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	verify, err := template.ParseFS(templateFS, "templates/layout.html", "templates/verify_email.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse verification template: %w", err)
	}
	reset, err := template.ParseFS(templateFS, "templates/layout.html", "templates/password_reset.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse reset template: %w", err)
	}

	m := &SMTPMailer{
		cfg:       cfg,
		links:     links,
		logger:    logger,
		verify:    verify,
		reset:     reset,
		now:       time.Now,
		verifyTTL: verifyTTL,
		resetTTL:  resetTTL,
	}
	m.send = m.sendSMTP
	return m, nil
}

// SendVerificationEmail renders and sends the verification email.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, email, token, name string) error {
	return m.deliver(ctx, m.verify, verifySubject, email, name, m.links.VerifyEmail(token), m.verifyTTL)
}

// SendPasswordResetEmail renders and sends the password reset email.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, email, token, name string) error {
	return m.deliver(ctx, m.reset, resetSubject, email, name, m.links.ResetPassword(token), m.resetTTL)
}

func (m *SMTPMailer) deliver(
	ctx context.Context,
	tmpl *template.Template,
	subject, to, name, link string,
	ttl time.Duration,
) error {
	body, err := render(tmpl, templateData{Name: name, Link: link, ExpiresIn: humanizeTTL(ttl)})
	if err != nil {
		return err
	}

	msg := m.buildMessage(to, subject, body)

	if err := m.send(ctx, to, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", m.addr(), err)
	}

	m.logger.InfoContext(ctx, "Email sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

type templateData struct {
	Name      string
	Link      string
	ExpiresIn string
}

func render(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

func (m *SMTPMailer) buildMessage(to, subject, htmlBody string) []byte {
	headers := []string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"Date: " + m.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody)
}

func (m *SMTPMailer) addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

// sendSMTP открывает соединение на каждое письмо; дедлайн ограничивает весь диалог
func (m *SMTPMailer) sendSMTP(ctx context.Context, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if m.cfg.ImplicitTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.cfg.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", m.addr())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", m.addr())
	}
	if err != nil {
		return err
	}

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if !m.cfg.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return err
			}
		}
	}

	if m.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			if err := c.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(envelopeAddress(m.cfg.From)); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// envelopeAddress извлекает адрес из "Name <addr>"
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func humanizeTTL(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short time"
	case d >= 48*time.Hour && d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(n) + " " + unit + "s"
}
