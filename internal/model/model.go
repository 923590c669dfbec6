package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts only the three known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleDoctor, RolePatient, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Level orders roles for minimum-role checks. Unknown roles are 0.
func (r Role) Level() int {
	switch r {
	case RolePatient:
		return 1
	case RoleDoctor:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Doctor carries the owning user's name and email when loaded with a join.
type Doctor struct {
	ID           string
	UserID       string
	Speciality   string
	IsOnline     bool
	LastOnlineAt *time.Time
	Name         string
	Email        string
	CreatedAt    time.Time
}

type Patient struct {
	ID     string
	UserID string
	Phone  *string
	Name   string
	Email  string
}

type Appointment struct {
	ID              string
	DoctorID        string
	PatientID       string
	AppointmentDate time.Time
	Status          Status
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AppointmentDetail is an appointment joined with both parties.
type AppointmentDetail struct {
	Appointment
	Doctor  Doctor
	Patient Patient
}

const NotificationDoctorOnline = "DOCTOR_ONLINE"

type Notification struct {
	ID      string
	Type    string
	Message string
	SentTo  []string
	SentAt  time.Time
}

// Profile is a user with whichever role profile it owns.
type Profile struct {
	User    User
	Doctor  *Doctor
	Patient *Patient
}

type AnalyticsOverview struct {
	TotalDoctors          int
	TotalPatients         int
	OnlineDoctors         int
	TotalAppointments     int
	PendingAppointments   int
	CompletedAppointments int
	RecentNotifications   int
}

type StatusCount struct {
	Status Status
	Count  int
}

type SpecialityCount struct {
	Speciality string
	Count      int
}

// Analytics covers appointments and notifications created since a cut-off;
// doctor and patient totals are all-time.
type Analytics struct {
	Overview     AnalyticsOverview
	StatusTrends []StatusCount
	Specialities []SpecialityCount
}
