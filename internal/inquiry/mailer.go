package inquiry

import (
	"fmt"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SendFunc delivers one message.
type SendFunc func(m *gomail.Message) error

// Mailer sends inquiry notifications from a small worker pool so the
// submitting request never waits on SMTP.
type Mailer struct {
	pool *ants.Pool
	send SendFunc
	from string
	to   []string
}

// NewMailer returns nil when cfg.Host is empty; a nil *Mailer ignores Notify.
func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewMailerWithSender(cfg, func(m *gomail.Message) error {
		return dialer.DialAndSend(m)
	})
}

func NewMailerWithSender(cfg config.MailConfig, send SendFunc) (*Mailer, error) {
	var to []string
	for _, addr := range strings.Split(cfg.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	if len(to) == 0 {
		return nil, errors.New("mail.to is required when mail.host is set")
	}
	from := cfg.From
	if from == "" {
		from = to[0]
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	pool, err := ants.NewPool(workers, ants.WithDisablePurge(true))
	if err != nil {
		return nil, errors.Wrap(err, "create mail pool")
	}
	return &Mailer{pool: pool, send: send, from: from, to: to}, nil
}

func (m *Mailer) message(inq domain.Inquiry) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	if inq.Email != "" {
		msg.SetHeader("Reply-To", inq.Email)
	}
	subject := "New inquiry from " + inq.Name
	if inq.Interest != "" {
		subject += " (" + inq.Interest + ")"
	}
	msg.SetHeader("Subject", subject)

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", inq.Name)
	if inq.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", inq.Email)
	}
	if inq.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", inq.Phone)
	}
	fmt.Fprintf(&b, "Received: %s\n\n%s\n", inq.CreatedAt.Format(time.RFC1123), inq.Message)
	msg.SetBody("text/plain", b.String())
	return msg
}

// Notify queues a notification for inq.
func (m *Mailer) Notify(inq domain.Inquiry) {
	if m == nil {
		return
	}
	msg := m.message(inq)
	err := m.pool.Submit(func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error(err)
			}
		}()
		if err := m.send(msg); err != nil {
			zap.L().Error("inquiry mail failed",
				zap.String("namespace", "inquiry"),
				zap.Int64("id", inq.ID),
				zap.Error(err))
			return
		}
		zap.L().Info("inquiry mail sent",
			zap.String("namespace", "inquiry"),
			zap.Int64("id", inq.ID))
	})
	if err != nil {
		zap.L().Error("inquiry mail not queued",
			zap.String("namespace", "inquiry"),
			zap.Int64("id", inq.ID),
			zap.Error(err))
	}
}

// Close waits up to timeout for queued mail, then stops the workers.
func (m *Mailer) Close(timeout time.Duration) error {
	if m == nil {
		return nil
	}
	if m.pool.IsClosed() {
		return nil
	}
	if err := m.pool.ReleaseTimeout(timeout); err != nil {
		return errors.Wrap(err, "release mail pool")
	}
	return nil
}
