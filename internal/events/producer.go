package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"mediconnect/internal/model"
)

// Publisher sends one event to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, e *Event) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: DefaultPublishTimeout,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, e *Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(e.AggregateID),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "source", Value: []byte(e.Source)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

type Nop struct{}

func (Nop) Publish(context.Context, string, *Event) error { return nil }

// DefaultPublishTimeout bounds how long a request waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

// Emitter turns domain changes into events and swallows publish errors.
type Emitter struct {
	pub     Publisher
	log     *zap.Logger
	timeout time.Duration
}

type EmitterOption func(*Emitter)

func WithPublishTimeout(d time.Duration) EmitterOption {
	return func(e *Emitter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func NewEmitter(pub Publisher, log *zap.Logger, opts ...EmitterOption) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	e := &Emitter{pub: pub, log: log, timeout: DefaultPublishTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// emit runs on the caller's goroutine, so the publish gets its own deadline.
// The write is not tied to request cancellation once the change is committed.
func (e *Emitter) emit(ctx context.Context, topic, aggregateID, aggregateType string, data any) {
	ev, err := NewEvent(topic, aggregateID, aggregateType, data)
	if err == nil {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		err = e.pub.Publish(pctx, topic, ev)
		cancel()
	}
	if err != nil {
		e.log.Warn("event not published",
			zap.String("topic", topic),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err))
	}
}

func appointmentData(a model.Appointment, actor string) AppointmentData {
	return AppointmentData{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate,
		Status:          string(a.Status),
		ActorUserID:     actor,
	}
}

func (e *Emitter) AppointmentCreated(ctx context.Context, a model.Appointment, actor string) {
	e.emit(ctx, TopicAppointmentCreated, a.ID, AggregateAppointment, appointmentData(a, actor))
}

func (e *Emitter) AppointmentUpdated(ctx context.Context, a model.Appointment, prev model.Status, actor string) {
	d := appointmentData(a, actor)
	if prev != a.Status {
		d.PreviousStatus = string(prev)
	}
	e.emit(ctx, TopicAppointmentUpdated, a.ID, AggregateAppointment, d)
}

func (e *Emitter) AppointmentDeleted(ctx context.Context, a model.Appointment, actor string) {
	e.emit(ctx, TopicAppointmentDeleted, a.ID, AggregateAppointment, appointmentData(a, actor))
}

func (e *Emitter) AvailabilityChanged(ctx context.Context, d model.Doctor, wasOnline bool) {
	e.emit(ctx, TopicDoctorAvailability, d.ID, AggregateDoctor, AvailabilityData{
		DoctorID:     d.ID,
		UserID:       d.UserID,
		IsOnline:     d.IsOnline,
		WasOnline:    wasOnline,
		LastOnlineAt: d.LastOnlineAt,
	})
}
