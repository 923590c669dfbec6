package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mediconnect/internal/auth"
	"mediconnect/internal/model"
	"mediconnect/internal/store"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) CreateUser(ctx context.Context, u *model.User, d *model.Doctor, p *model.Patient) error {
	return m.Called(ctx, u, d, p).Error(0)
}

func (m *mockUserStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*model.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) UpdateUserName(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockUserStore) UpdateSpeciality(ctx context.Context, doctorID, speciality string) error {
	return m.Called(ctx, doctorID, speciality).Error(0)
}

func (m *mockUserStore) UpdatePatientPhone(ctx context.Context, patientID string, phone *string) error {
	return m.Called(ctx, patientID, phone).Error(0)
}

type mockDoctorStore struct{ mock.Mock }

func (m *mockDoctorStore) DoctorByID(ctx context.Context, id string) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorStore) DoctorByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorStore) ListDoctors(ctx context.Context, f store.DoctorFilter) ([]model.Doctor, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Doctor), args.Int(1), args.Error(2)
}

func (m *mockDoctorStore) ListOnlineDoctors(ctx context.Context) ([]model.Doctor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Doctor), args.Error(1)
}

func (m *mockDoctorStore) SetOnline(ctx context.Context, doctorID string, online bool, now time.Time) (bool, *model.Doctor, error) {
	args := m.Called(ctx, doctorID, online, now)
	if d := args.Get(1); d != nil {
		return args.Bool(0), d.(*model.Doctor), args.Error(2)
	}
	return args.Bool(0), nil, args.Error(2)
}

type mockPatientStore struct{ mock.Mock }

func (m *mockPatientStore) PatientByUserID(ctx context.Context, userID string) (*model.Patient, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*model.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAppointmentStore struct{ mock.Mock }

func (m *mockAppointmentStore) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAppointmentStore) GetAppointment(ctx context.Context, id string) (*model.AppointmentDetail, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*model.AppointmentDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAppointmentStore) ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.AppointmentDetail, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.AppointmentDetail), args.Int(1), args.Error(2)
}

func (m *mockAppointmentStore) UpdateAppointment(ctx context.Context, id string, status *model.Status, notes *string) error {
	return m.Called(ctx, id, status, notes).Error(0)
}

func (m *mockAppointmentStore) DeleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAnalyticsStore struct{ mock.Mock }

func (m *mockAnalyticsStore) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	args := m.Called(ctx, since)
	if a := args.Get(0); a != nil {
		return a.(*model.Analytics), args.Error(1)
	}
	return nil, args.Error(1)
}

type recordingEvents struct {
	created, updated, deleted []model.Appointment
	prev                      []model.Status
}

func (e *recordingEvents) AppointmentCreated(_ context.Context, a model.Appointment, _ string) {
	e.created = append(e.created, a)
}

func (e *recordingEvents) AppointmentUpdated(_ context.Context, a model.Appointment, prev model.Status, _ string) {
	e.updated = append(e.updated, a)
	e.prev = append(e.prev, prev)
}

func (e *recordingEvents) AppointmentDeleted(_ context.Context, a model.Appointment, _ string) {
	e.deleted = append(e.deleted, a)
}

type availabilityCall struct {
	doctor    model.Doctor
	wasOnline bool
}

type recordingListener struct{ calls []availabilityCall }

func (l *recordingListener) AvailabilityChanged(_ context.Context, d model.Doctor, wasOnline bool) {
	l.calls = append(l.calls, availabilityCall{d, wasOnline})
}

type stubIssuer struct{ err error }

func (s stubIssuer) Issue(id auth.Identity) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + id.UserID, nil
}
