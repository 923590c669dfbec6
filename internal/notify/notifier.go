// Package notify tells patients when a doctor comes online.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"mediconnect/internal/model"
)

var fanOuts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mediconnect_availability_notifications_total",
	Help: "Doctor-online fan-outs by outcome.",
}, []string{"result"})

type PatientDirectory interface {
	PatientEmails(ctx context.Context) ([]string, error)
}

type AuditLog interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
}

type Notifier struct {
	mailer   Mailer
	patients PatientDirectory
	audit    AuditLog
	log      *zap.Logger

	async     bool
	timeout   time.Duration
	tries     uint
	retryWait time.Duration
	now       func() time.Time

	wg sync.WaitGroup
}

type Option func(*Notifier)

// Sync makes AvailabilityChanged block until the fan-out finishes.
func Sync() Option { return func(n *Notifier) { n.async = false } }

func WithRetry(tries uint, wait time.Duration) Option {
	return func(n *Notifier) {
		n.tries = tries
		n.retryWait = wait
	}
}

func WithTimeout(d time.Duration) Option { return func(n *Notifier) { n.timeout = d } }

func WithClock(now func() time.Time) Option { return func(n *Notifier) { n.now = now } }

func New(m Mailer, patients PatientDirectory, audit AuditLog, log *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		mailer:    m,
		patients:  patients,
		audit:     audit,
		log:       log,
		async:     true,
		timeout:   time.Minute,
		tries:     3,
		retryWait: 500 * time.Millisecond,
		now:       time.Now,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// AvailabilityChanged fires only on the offline to online edge. It never
// reports failure; the availability change it follows is already committed.
func (n *Notifier) AvailabilityChanged(ctx context.Context, d model.Doctor, wasOnline bool) {
	if wasOnline || !d.IsOnline {
		return
	}
	if !n.async {
		n.fanOut(ctx, d)
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.fanOut(context.WithoutCancel(ctx), d)
	}()
}

// Wait blocks until in-flight fan-outs finish.
func (n *Notifier) Wait() { n.wg.Wait() }

func (n *Notifier) fanOut(ctx context.Context, d model.Doctor) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	log := n.log.With(zap.String("doctor_id", d.ID))

	emails, err := n.patients.PatientEmails(ctx)
	if err != nil {
		fanOuts.WithLabelValues("failed").Inc()
		log.Error("load patient emails", zap.Error(err))
		return
	}
	if len(emails) == 0 {
		fanOuts.WithLabelValues("skipped").Inc()
		return
	}

	html, err := onlineHTML(d.Name, d.Speciality)
	if err != nil {
		fanOuts.WithLabelValues("failed").Inc()
		log.Error("render mail", zap.Error(err))
		return
	}
	mail := Mail{To: emails, Subject: onlineSubject(d.Name), HTML: html}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.retryWait
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, n.mailer.Send(ctx, mail)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(n.tries))
	if err != nil {
		fanOuts.WithLabelValues("failed").Inc()
		log.Error("doctor online mail failed", zap.Int("recipients", len(emails)), zap.Error(err))
		return
	}

	rec := &model.Notification{
		ID:      uuid.New().String(),
		Type:    model.NotificationDoctorOnline,
		Message: onlineMessage(d.Name),
		SentTo:  emails,
		SentAt:  n.now(),
	}
	if err := n.audit.CreateNotification(ctx, rec); err != nil {
		log.Error("record notification", zap.Error(err))
	}
	fanOuts.WithLabelValues("sent").Inc()
	log.Info("doctor online notification sent", zap.Int("recipients", len(emails)))
}
