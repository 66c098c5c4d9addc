package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	config "github.com/NordCoder/nodeping/internal/config/nodeping"
	"github.com/NordCoder/nodeping/internal/domain/notification"
	"go.uber.org/zap"
)

// Mailer speaks SMTP to a single relay.
type Mailer struct {
	addr       string
	auth       smtp.Auth
	useTLS     bool
	timeout    time.Duration
	from       string
	subjPrefix string

	log *zap.Logger
}

func NewMailer(cfg config.SMTP) *Mailer {
	var auth smtp.Auth
	if cfg.User != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, host(cfg.Addr))
	}
	return &Mailer{
		addr:       cfg.Addr,
		auth:       auth,
		useTLS:     cfg.UseTLS,
		timeout:    cfg.Timeout,
		from:       cfg.From,
		subjPrefix: cfg.SubjPrefix,
		log:        zap.L().With(zap.String("component", "notifier.mailer")),
	}
}

func (m *Mailer) WithLogger(l *zap.Logger) *Mailer {
	if l == nil {
		return m
	}
	cp := *m
	cp.log = l.With(zap.String("component", "notifier.mailer"))
	return &cp
}

func (m *Mailer) compose(to []string, subject, body string) []byte {
	subj := strings.TrimSpace(m.subjPrefix + " " + subject)
	return []byte(
		"From: " + m.from + "\r\n" +
			"To: " + strings.Join(to, ", ") + "\r\n" +
			"Subject: " + subj + "\r\n" +
			"Content-Type: text/plain; charset=utf-8\r\n" +
			"\r\n" + body + "\r\n")
}

const defaultSMTPTimeout = 10 * time.Second

// Send delivers one message to all recipients in a single SMTP transaction.
// The whole exchange is bounded by the configured timeout and by ctx.
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("mailer: no recipients")
	}
	msg := m.compose(to, subject, body)
	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.Strings("to", to),
	)

	timeout := m.timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := m.dial(ctx)
	if err != nil {
		log.Error("smtp dial failed", zap.Error(err))
		return err
	}
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		_ = conn.Close()
		log.Error("smtp client failed", zap.Error(err))
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = c.Close() }()

	if err := m.transact(c, to, msg); err != nil {
		log.Error("smtp send failed", zap.Error(err))
		return err
	}
	log.Info("email sent", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (m *Mailer) dial(ctx context.Context) (net.Conn, error) {
	nd := &net.Dialer{}
	if !m.useTLS {
		conn, err := nd.DialContext(ctx, "tcp", m.addr)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		return conn, nil
	}
	d := &tls.Dialer{
		NetDialer: nd,
		Config:    &tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12},
	}
	conn, err := d.DialContext(ctx, "tcp", m.addr)
	if err != nil {
		return nil, fmt.Errorf("tls dial: %w", err)
	}
	return conn, nil
}

// transact runs one mail transaction on c, upgrading a plain connection with STARTTLS when offered.
func (m *Mailer) transact(c *smtp.Client, to []string, msg []byte) error {
	if err := c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp EHLO: %w", err)
	}
	if !m.useTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host(m.addr), MinVersion: tls.VersionTLS12}); err != nil {
				return fmt.Errorf("smtp STARTTLS: %w", err)
			}
		}
	}
	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}

func host(addr string) string {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		return h
	}
	return addr
}

// MailSender is the part of Mailer used by the email target.
type MailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type Email struct {
	name string
	to   []string
	mail MailSender
}

func NewEmail(name string, to []string, mail MailSender) *Email {
	return &Email{name: name, to: to, mail: mail}
}

func (e *Email) Name() string { return e.name }

func (e *Email) Send(ctx context.Context, ev notification.Event) error {
	subject, body := renderEmail(ev)
	return e.mail.Send(ctx, e.to, subject, body)
}

func renderEmail(ev notification.Event) (subject, body string) {
	subject = ev.Title() + ": " + ev.Node.Name
	var b strings.Builder
	b.WriteString(ev.Description())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Name:   %s\n", ev.Node.Name)
	fmt.Fprintf(&b, "IP:     %s\n", ev.Node.Addr)
	fmt.Fprintf(&b, "Status: %s\n", ev.Node.Status)
	if !ev.At.IsZero() {
		fmt.Fprintf(&b, "At:     %s\n", ev.At.UTC().Format(time.RFC3339))
	}
	return subject, b.String()
}
