package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/lifecycle"
	"mediconnect/internal/model"
	"mediconnect/internal/policy"
	"mediconnect/internal/store"
)

type AppointmentService struct {
	appts    AppointmentStore
	doctors  DoctorStore
	patients PatientStore
	events   AppointmentEvents
	log      *zap.Logger
	now      func() time.Time
}

func NewAppointmentService(appts AppointmentStore, doctors DoctorStore, patients PatientStore, events AppointmentEvents, log *zap.Logger) *AppointmentService {
	return &AppointmentService{
		appts:    appts,
		doctors:  doctors,
		patients: patients,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

type profileLookup struct {
	DoctorStore
	PatientStore
}

func (s *AppointmentService) actor(ctx context.Context, id auth.Identity) (policy.Actor, error) {
	return actorFor(ctx, profileLookup{s.doctors, s.patients}, id)
}

type CreateAppointmentInput struct {
	DoctorID        string
	AppointmentDate time.Time
	Notes           *string
}

// Create books a PENDING appointment. The doctor must be online right now;
// that is not re-checked later.
func (s *AppointmentService) Create(ctx context.Context, id auth.Identity, in CreateAppointmentInput) (*model.AppointmentDetail, error) {
	if !policy.CanCreateAppointment(id.Role) {
		return nil, apperr.Forbidden("Only patients can book appointments")
	}
	if in.DoctorID == "" || in.AppointmentDate.IsZero() {
		return nil, apperr.Invalid("Doctor ID and appointment date are required")
	}

	doctor, err := s.doctors.DoctorByID(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsOnline {
		return nil, apperr.Conflict("Doctor is currently offline")
	}
	patient, err := s.patients.PatientByUserID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	a := model.Appointment{
		ID:              uuid.New().String(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentDate: in.AppointmentDate.UTC(),
		Status:          lifecycle.Initial(),
		Notes:           in.Notes,
	}
	if err := s.appts.CreateAppointment(ctx, &a); err != nil {
		return nil, err
	}
	s.events.AppointmentCreated(ctx, a, id.UserID)
	s.log.Info("appointment created",
		zap.String("appointment_id", a.ID),
		zap.String("doctor_id", a.DoctorID),
		zap.String("patient_id", a.PatientID))

	return &model.AppointmentDetail{Appointment: a, Doctor: *doctor, Patient: *patient}, nil
}

func (s *AppointmentService) Get(ctx context.Context, id auth.Identity, apptID string) (*model.AppointmentDetail, error) {
	ad, err := s.appts.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	a, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewAppointment(a, ad.Appointment) {
		return nil, apperr.Forbidden("Access denied")
	}
	return ad, nil
}

type ListAppointmentsInput struct {
	Status model.Status
	Page   int
	Limit  int
}

// List scopes to the caller's own appointments; admins see all of them.
func (s *AppointmentService) List(ctx context.Context, id auth.Identity, in ListAppointmentsInput) ([]model.AppointmentDetail, int, store.Page, error) {
	page := PageOf(in.Page, in.Limit)
	a, err := s.actor(ctx, id)
	if err != nil {
		return nil, 0, page, err
	}
	f := store.AppointmentFilter{Status: in.Status, Page: page}
	switch a.Role {
	case model.RoleDoctor:
		f.DoctorID = a.OwnedID
	case model.RolePatient:
		f.PatientID = a.OwnedID
	}
	out, total, err := s.appts.ListAppointments(ctx, f)
	return out, total, page, err
}

// UpdateAppointmentInput changes whichever fields are set. ClearNotes wins
// over Notes.
type UpdateAppointmentInput struct {
	Status     *model.Status
	Notes      *string
	ClearNotes bool
}

func (s *AppointmentService) Update(ctx context.Context, id auth.Identity, apptID string, in UpdateAppointmentInput) (*model.AppointmentDetail, error) {
	if in.ClearNotes {
		empty := ""
		in.Notes = &empty
	}
	if in.Status == nil && in.Notes == nil {
		return nil, apperr.Invalid("Status or notes is required")
	}
	ad, err := s.appts.GetAppointment(ctx, apptID)
	if err != nil {
		return nil, err
	}
	a, err := s.actor(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanActOnAppointment(a, ad.Appointment) {
		return nil, apperr.Forbidden("Access denied")
	}

	prev := ad.Status
	if in.Status != nil {
		to := *in.Status
		if !policy.CanSetStatus(a, ad.Appointment, to) {
			return nil, apperr.Forbidden("Patients can only cancel appointments")
		}
		if err := transitionError(lifecycle.Check(a.Role, prev, to), prev, to); err != nil {
			return nil, err
		}
	}

	if err := s.appts.UpdateAppointment(ctx, apptID, in.Status, in.Notes); err != nil {
		return nil, err
	}
	if in.Status != nil {
		ad.Status = *in.Status
	}
	if in.Notes != nil {
		ad.Notes = in.Notes
		if *in.Notes == "" {
			ad.Notes = nil
		}
	}
	ad.UpdatedAt = s.now().UTC()

	s.events.AppointmentUpdated(ctx, ad.Appointment, prev, id.UserID)
	s.log.Info("appointment updated",
		zap.String("appointment_id", ad.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(ad.Status)))
	return ad, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id auth.Identity, apptID string) error {
	ad, err := s.appts.GetAppointment(ctx, apptID)
	if err != nil {
		return err
	}
	a, err := s.actor(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanActOnAppointment(a, ad.Appointment) {
		return apperr.Forbidden("Access denied")
	}
	if err := s.appts.DeleteAppointment(ctx, apptID); err != nil {
		return err
	}
	s.events.AppointmentDeleted(ctx, ad.Appointment, id.UserID)
	s.log.Info("appointment deleted", zap.String("appointment_id", apptID))
	return nil
}

func transitionError(err error, from, to model.Status) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, lifecycle.ErrNotPermitted):
		return apperr.Forbidden("Patients can only cancel appointments")
	case errors.Is(err, lifecycle.ErrTerminal):
		return apperr.Conflict(fmt.Sprintf("Appointment is already %s", from))
	default:
		return apperr.Invalid(fmt.Sprintf("Cannot change status from %s to %s", from, to))
	}
}
