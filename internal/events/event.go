// Package events publishes domain events to Kafka. Publishing is best
// effort: failures are logged and never reach the caller.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicAppointmentCreated = "mediconnect.appointment.created"
	TopicAppointmentUpdated = "mediconnect.appointment.updated"
	TopicAppointmentDeleted = "mediconnect.appointment.deleted"
	TopicDoctorAvailability = "mediconnect.doctor.availability"

	AggregateAppointment = "appointment"
	AggregateDoctor      = "doctor"

	Source = "mediconnect-api"
)

// Event is the envelope every message is wrapped in.
type Event struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Version       int             `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	Data          json.RawMessage `json:"data"`
}

func NewEvent(eventType, aggregateID, aggregateType string, data any) (*Event, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       1,
		Timestamp:     time.Now().UTC(),
		Source:        Source,
		Data:          b,
	}, nil
}

type AppointmentData struct {
	ID              string    `json:"id"`
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	ActorUserID     string    `json:"actor_user_id"`
}

type AvailabilityData struct {
	DoctorID     string     `json:"doctor_id"`
	UserID       string     `json:"user_id"`
	IsOnline     bool       `json:"is_online"`
	WasOnline    bool       `json:"was_online"`
	LastOnlineAt *time.Time `json:"last_online_at,omitempty"`
}
