package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"

	"newsportal/internal/domain/entity"
	"newsportal/internal/observability/logging"
	"newsportal/internal/resilience/retry"
)

// SMTPConfig contains the relay settings for approval emails.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// SMTPMailer sends approval emails through an SMTP relay.
// Every recipient is placed in the envelope only, so subscribers never see each other.
type SMTPMailer struct {
	config SMTPConfig
	retry  retry.Config
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &SMTPMailer{config: config, retry: retry.SMTPConfig()}
}

// ApprovalSubject is the subject line of the approval email.
func ApprovalSubject(title string) string {
	return "New Article Approved: " + title
}

// SendApproval implements Mailer.
func (m *SMTPMailer) SendApproval(ctx context.Context, recipients []string, article *entity.Article) error {
	if len(recipients) == 0 {
		return errors.New("smtp: no recipients")
	}
	rendered, err := RenderArticle(article.Title, article.Body)
	if err != nil {
		return err
	}
	msg, err := m.buildMessage(article, rendered)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	logger := logging.FromContext(ctx)
	attempt := 0
	err = retry.WithBackoff(ctx, m.retry, func() error {
		attempt++
		return m.send(ctx, recipients, msg)
	})
	if err != nil {
		logger.Error("approval email failed",
			"article_id", article.ID,
			"recipients", len(recipients),
			"attempts", attempt,
			"error", err)
		return err
	}
	logger.Info("approval email sent",
		"article_id", article.ID,
		"recipients", len(recipients),
		"attempts", attempt)
	return nil
}

func (m *SMTPMailer) buildMessage(article *entity.Article, rendered RenderedArticle) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := (&mail.Address{Address: m.config.From}).String()
	headers := []struct{ k, v string }{
		{"From", from},
		{"To", "undisclosed-recipients:;"},
		{"Subject", mime.QEncoding.Encode("utf-8", ApprovalSubject(article.Title))},
		{"Date", time.Now().UTC().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), m.config.Host)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + strconv.Quote(mw.Boundary())},
	}
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.k, h.v)
	}
	buf.WriteString("\r\n")

	parts := []struct{ contentType, body string }{
		{"text/plain; charset=utf-8", rendered.Text},
		{"text/html; charset=utf-8", rendered.HTML},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *SMTPMailer) send(ctx context.Context, recipients []string, msg []byte) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	conn, err := (&net.Dialer{Timeout: m.config.Timeout}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(m.config.Timeout))

	c, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.config.Username != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.config.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt: %w", err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

var _ Mailer = (*SMTPMailer)(nil)
