// Package mail delivers outbound email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// ErrDisabled is returned by Send when no SMTP host is configured.
var ErrDisabled = errors.New("email delivery is not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	SSL      bool
	Timeout  time.Duration
}

// Message is a single HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// dialer is the part of *gomail.Dialer Client uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Client struct {
	cfg Config
	d   dialer
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{cfg: cfg}
	if cfg.Host != "" {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		d.SSL = cfg.SSL
		c.d = d
	}
	return c
}

// Enabled reports whether an SMTP host is configured.
func (c *Client) Enabled() bool {
	return c.d != nil
}

// Send builds and sends m, returning early if ctx ends first. The SMTP
// exchange itself cannot be cancelled and finishes in the background.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- c.d.DialAndSend(msg)
	}()

	wait := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left > 0 && left < wait {
			wait = left
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("from address is required")
	}
	to := strings.TrimSpace(m.To)
	if to == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	subject := strings.TrimSpace(m.Subject)
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)

	switch {
	case m.TextBody != "" && m.HTMLBody != "":
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case m.HTMLBody != "":
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}
	return msg, nil
}
