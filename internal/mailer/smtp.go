package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout  = 30 * time.Second
	implicitTLSPort = 465
)

// SMTP is the live transport. Port 465 uses implicit TLS; any other port
// upgrades with STARTTLS when the server offers it.
type SMTP struct {
	config *Config
	logger *zap.Logger
}

func NewSMTP(config *Config, logger *zap.Logger) *SMTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	return &SMTP{config: config, logger: logger}
}

func (s *SMTP) Send(ctx context.Context, msg *Message) error {
	payload, err := s.buildPayload(msg)
	if err != nil {
		return fmt.Errorf("building message for %s: %w", msg.To, err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	dialer := &net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}

	// One deadline bounds the whole SMTP session.
	if err := conn.SetDeadline(time.Now().Add(s.config.Timeout)); err != nil {
		conn.Close()
		return err
	}

	if s.config.Port == implicitTLSPort {
		conn = tls.Client(conn, &tls.Config{ServerName: s.config.Host})
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer client.Close()

	if s.config.Port != implicitTLSPort {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
				return fmt.Errorf("starttls with %s: %w", addr, err)
			}
		} else {
			s.logger.Warn("server does not offer STARTTLS, continuing on plain connection",
				zap.String("host", s.config.Host),
			)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth for %s: %w", s.config.Username, err)
		}
	}

	if err := client.Mail(s.config.SenderEmail); err != nil {
		return fmt.Errorf("mail from %s: %w", s.config.SenderEmail, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to %s: %w", msg.To, err)
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := writer.Write(payload); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// buildPayload renders the RFC 822 message: a plain text part and, when the
// configured attachment exists, a base64 part in a multipart/mixed envelope.
// A missing attachment downgrades to plain text with a warning.
func (s *SMTP) buildPayload(msg *Message) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.config.SenderName, s.config.SenderEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")

	attachment, err := s.readAttachment(msg.AttachmentPath)
	if err != nil {
		return nil, err
	}

	if attachment == nil {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(msg.Body)
		return buf.Bytes(), nil
	}

	const boundary = "outreacher-mixed-boundary"
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	contentType := mime.TypeByExtension(filepath.Ext(attachment.name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", attachment.name)

	encoded := base64.StdEncoding.EncodeToString(attachment.data)
	for len(encoded) > 0 {
		line := encoded
		if len(line) > 76 {
			line = line[:76]
		}
		buf.WriteString(line)
		buf.WriteString("\r\n")
		encoded = encoded[len(line):]
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes(), nil
}

type attachment struct {
	name string
	data []byte
}

func (s *SMTP) readAttachment(path string) (*attachment, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("attachment not found, sending without it",
				zap.String("path", path),
			)
			return nil, nil
		}
		return nil, fmt.Errorf("reading attachment %q: %w", path, err)
	}

	return &attachment{name: filepath.Base(path), data: data}, nil
}
