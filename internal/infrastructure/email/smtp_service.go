package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"wavehouse-backend/pkg/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

type smtpEmailService struct {
	cfg SMTPConfig
}

// NewSMTPEmailService upgrades to STARTTLS when the server offers it and
// authenticates with PLAIN when a username is configured.
func NewSMTPEmailService(cfg SMTPConfig) EmailService {
	return &smtpEmailService{cfg: cfg}
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	msg := buildMessage(s.cfg.From, req)
	recipients := append(append([]string{}, req.To...), req.Cc...)

	if err := s.send(ctx, recipients, msg); err != nil {
		logger.Warn("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        strings.Join(req.To, ","),
			"smtp_addr": s.cfg.addr(),
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) send(ctx context.Context, recipients []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.cfg.addr())
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	return client.Quit()
}

func buildMessage(from string, req EmailRequest) []byte {
	contentType := "text/plain"
	if req.IsHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(req.To, ", "))
	if len(req.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\r\n", strings.Join(req.Cc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", req.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(req.Body)
	return []byte(b.String())
}

// =====================================================
// LOG-ONLY SERVICE
// =====================================================

type logEmailService struct{}

// NewLogEmailService prints instead of sending. Used when no SMTP host is set.
func NewLogEmailService() EmailService {
	return logEmailService{}
}

func (logEmailService) SendEmail(_ context.Context, req EmailRequest) error {
	logger.Info("Email (not sent, SMTP disabled)", map[string]interface{}{
		"to":      strings.Join(req.To, ","),
		"subject": req.Subject,
		"bytes":   len(req.Body),
	})
	return nil
}
