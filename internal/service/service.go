// Package service holds the use cases behind both transports. Services take
// the caller's verified identity and return *apperr.Error for every
// expected failure.
package service

import (
	"context"
	"time"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
	"mediconnect/internal/policy"
	"mediconnect/internal/store"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User, d *model.Doctor, p *model.Patient) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateUserName(ctx context.Context, id, name string) error
	UpdateSpeciality(ctx context.Context, doctorID, speciality string) error
	UpdatePatientPhone(ctx context.Context, patientID string, phone *string) error
}

type DoctorStore interface {
	DoctorByID(ctx context.Context, id string) (*model.Doctor, error)
	DoctorByUserID(ctx context.Context, userID string) (*model.Doctor, error)
	ListDoctors(ctx context.Context, f store.DoctorFilter) ([]model.Doctor, int, error)
	ListOnlineDoctors(ctx context.Context) ([]model.Doctor, error)
	SetOnline(ctx context.Context, doctorID string, online bool, now time.Time) (bool, *model.Doctor, error)
}

type PatientStore interface {
	PatientByUserID(ctx context.Context, userID string) (*model.Patient, error)
}

type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.AppointmentDetail, error)
	ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.AppointmentDetail, int, error)
	UpdateAppointment(ctx context.Context, id string, status *model.Status, notes *string) error
	DeleteAppointment(ctx context.Context, id string) error
}

type AnalyticsStore interface {
	Analytics(ctx context.Context, since time.Time) (*model.Analytics, error)
}

type AppointmentEvents interface {
	AppointmentCreated(ctx context.Context, a model.Appointment, actorUserID string)
	AppointmentUpdated(ctx context.Context, a model.Appointment, prev model.Status, actorUserID string)
	AppointmentDeleted(ctx context.Context, a model.Appointment, actorUserID string)
}

// AvailabilityListener is told about every committed availability write.
// Listeners decide for themselves whether the change matters.
type AvailabilityListener interface {
	AvailabilityChanged(ctx context.Context, d model.Doctor, wasOnline bool)
}

// Pagination defaults match the listing endpoints.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageOf converts a 1-based page number and size into a store window.
func PageOf(page, limit int) store.Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	return store.Page{Limit: limit, Offset: (page - 1) * limit}
}

type profiles interface {
	DoctorByUserID(ctx context.Context, userID string) (*model.Doctor, error)
	PatientByUserID(ctx context.Context, userID string) (*model.Patient, error)
}

// actorFor attaches the caller's own doctor or patient id.
func actorFor(ctx context.Context, p profiles, id auth.Identity) (policy.Actor, error) {
	a := policy.Actor{UserID: id.UserID, Role: id.Role}
	switch id.Role {
	case model.RoleDoctor:
		d, err := p.DoctorByUserID(ctx, id.UserID)
		if err != nil {
			return a, err
		}
		a.OwnedID = d.ID
	case model.RolePatient:
		pt, err := p.PatientByUserID(ctx, id.UserID)
		if err != nil {
			return a, err
		}
		a.OwnedID = pt.ID
	case model.RoleAdmin:
	default:
		return a, apperr.Forbidden("Access denied")
	}
	return a, nil
}

// Services bundles the use cases both transports serve.
type Services struct {
	Auth         *AuthService
	Profiles     *ProfileService
	Doctors      *DoctorService
	Appointments *AppointmentService
	Analytics    *AnalyticsService
}
