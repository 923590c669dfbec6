package notify

import (
	"context"
	"errors"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Mail is one message to many recipients. Recipients are not visible to
// each other.
type Mail struct {
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// ErrMailerOpen is returned while the SMTP breaker is open.
var ErrMailerOpen = gobreaker.ErrOpenState

type smtpSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	sender  smtpSender
	from    string
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewSMTPMailer(cfg SMTPConfig, log *zap.Logger) *SMTPMailer {
	return newSMTPMailer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, log)
}

func newSMTPMailer(s smtpSender, from string, log *zap.Logger) *SMTPMailer {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &SMTPMailer{
		sender:  s,
		from:    from,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if len(mail.To) == 0 {
		return errors.New("mail has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.breaker.Execute(func() (struct{}, error) {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", m.from)
		msg.SetHeader("Bcc", mail.To...)
		msg.SetHeader("Subject", mail.Subject)
		msg.SetBody("text/html", mail.HTML)
		return struct{}{}, m.sender.DialAndSend(msg)
	})
	return err
}

// LogMailer stands in when no SMTP host is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, mail Mail) error {
	m.log.Info("mail not sent, no SMTP host configured",
		zap.String("subject", mail.Subject),
		zap.Int("recipients", len(mail.To)))
	return nil
}
