// Package storetest is an in-memory stand-in for the Postgres store, used by
// transport tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
	"mediconnect/internal/store"
)

type Memory struct {
	mu            sync.Mutex
	users         map[string]model.User
	doctors       map[string]model.Doctor
	patients      map[string]model.Patient
	appointments  map[string]model.Appointment
	Notifications []model.Notification
	now           func() time.Time
}

func New() *Memory {
	return &Memory{
		users:        map[string]model.User{},
		doctors:      map[string]model.Doctor{},
		patients:     map[string]model.Patient{},
		appointments: map[string]model.Appointment{},
		now:          time.Now,
	}
}

func (m *Memory) CreateUser(_ context.Context, u *model.User, d *model.Doctor, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.Conflict("User already exists")
		}
	}
	u.CreatedAt, u.UpdatedAt = m.now(), m.now()
	m.users[u.ID] = *u
	if d != nil {
		dd := *d
		dd.UserID, dd.CreatedAt = u.ID, u.CreatedAt
		m.doctors[dd.ID] = dd
	}
	if p != nil {
		pp := *p
		pp.UserID = u.ID
		m.patients[pp.ID] = pp
	}
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *Memory) UpdateUserName(_ context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	u.Name, u.UpdatedAt = name, m.now()
	m.users[id] = u
	return nil
}

func (m *Memory) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	m.mu.Lock()
	u, ok := m.users[userID]
	m.mu.Unlock()
	if !ok {
		return nil, apperr.NotFound("User")
	}
	p := &model.Profile{User: u}
	if d, err := m.DoctorByUserID(ctx, userID); err == nil {
		p.Doctor = d
	}
	if pt, err := m.PatientByUserID(ctx, userID); err == nil {
		p.Patient = pt
	}
	return p, nil
}

// doctor joins the owning user. Callers hold mu.
func (m *Memory) doctor(d model.Doctor) *model.Doctor {
	u := m.users[d.UserID]
	d.Name, d.Email = u.Name, u.Email
	return &d
}

func (m *Memory) patient(p model.Patient) *model.Patient {
	u := m.users[p.UserID]
	p.Name, p.Email = u.Name, u.Email
	return &p
}

func (m *Memory) DoctorByID(_ context.Context, id string) (*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperr.NotFound("Doctor")
	}
	return m.doctor(d), nil
}

func (m *Memory) DoctorByUserID(_ context.Context, userID string) (*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.doctors {
		if d.UserID == userID {
			return m.doctor(d), nil
		}
	}
	return nil, apperr.NotFound("Doctor profile")
}

func (m *Memory) ListDoctors(_ context.Context, f store.DoctorFilter) ([]model.Doctor, int, error) {
	m.mu.Lock()
	var all []model.Doctor
	for _, d := range m.doctors {
		if f.Speciality != "" && !strings.Contains(strings.ToLower(d.Speciality), strings.ToLower(f.Speciality)) {
			continue
		}
		if f.IsOnline != nil && d.IsOnline != *f.IsOnline {
			continue
		}
		all = append(all, *m.doctor(d))
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.IsOnline != b.IsOnline {
			return a.IsOnline
		}
		if !timeEq(a.LastOnlineAt, b.LastOnlineAt) {
			return timeAfter(a.LastOnlineAt, b.LastOnlineAt)
		}
		return a.Name < b.Name
	})
	return window(all, f.Page), len(all), nil
}

func (m *Memory) ListOnlineDoctors(ctx context.Context) ([]model.Doctor, error) {
	online := true
	out, _, err := m.ListDoctors(ctx, store.DoctorFilter{IsOnline: &online, Page: store.Page{Limit: 1 << 30}})
	return out, err
}

func (m *Memory) SetOnline(_ context.Context, doctorID string, online bool, now time.Time) (bool, *model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctorID]
	if !ok {
		return false, nil, apperr.NotFound("Doctor")
	}
	prev := d.IsOnline
	d.IsOnline = online
	if online && !prev {
		t := now
		d.LastOnlineAt = &t
	}
	m.doctors[doctorID] = d
	return prev, m.doctor(d), nil
}

func (m *Memory) UpdateSpeciality(_ context.Context, doctorID, speciality string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[doctorID]
	if !ok {
		return apperr.NotFound("Doctor")
	}
	d.Speciality = speciality
	m.doctors[doctorID] = d
	return nil
}

func (m *Memory) PatientByUserID(_ context.Context, userID string) (*model.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.patients {
		if p.UserID == userID {
			return m.patient(p), nil
		}
	}
	return nil, apperr.NotFound("Patient profile")
}

func (m *Memory) UpdatePatientPhone(_ context.Context, patientID string, phone *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patients[patientID]
	if !ok {
		return apperr.NotFound("Patient profile")
	}
	p.Phone = phone
	m.patients[patientID] = p
	return nil
}

func (m *Memory) PatientEmails(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.patients {
		out = append(out, m.users[p.UserID].Email)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) CreateAppointment(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt, a.UpdatedAt = m.now(), m.now()
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) detail(a model.Appointment) model.AppointmentDetail {
	return model.AppointmentDetail{
		Appointment: a,
		Doctor:      *m.doctor(m.doctors[a.DoctorID]),
		Patient:     *m.patient(m.patients[a.PatientID]),
	}
}

func (m *Memory) GetAppointment(_ context.Context, id string) (*model.AppointmentDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFound("Appointment")
	}
	ad := m.detail(a)
	return &ad, nil
}

func (m *Memory) ListAppointments(_ context.Context, f store.AppointmentFilter) ([]model.AppointmentDetail, int, error) {
	m.mu.Lock()
	var all []model.AppointmentDetail
	for _, a := range m.appointments {
		if f.DoctorID != "" && a.DoctorID != f.DoctorID ||
			f.PatientID != "" && a.PatientID != f.PatientID ||
			f.Status != "" && a.Status != f.Status {
			continue
		}
		all = append(all, m.detail(a))
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].AppointmentDate.After(all[j].AppointmentDate) })
	return window(all, f.Page), len(all), nil
}

func (m *Memory) UpdateAppointment(_ context.Context, id string, status *model.Status, notes *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return apperr.NotFound("Appointment")
	}
	if status != nil {
		a.Status = *status
	}
	switch {
	case notes == nil:
	case *notes == "":
		a.Notes = nil
	default:
		a.Notes = notes
	}
	a.UpdatedAt = m.now()
	m.appointments[id] = a
	return nil
}

func (m *Memory) DeleteAppointment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return apperr.NotFound("Appointment")
	}
	delete(m.appointments, id)
	return nil
}

func (m *Memory) CreateNotification(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, *n)
	return nil
}

// NotificationCount is safe to call while fan-outs run.
func (m *Memory) NotificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

func (m *Memory) Analytics(_ context.Context, since time.Time) (*model.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &model.Analytics{}
	o := &out.Overview
	o.TotalDoctors, o.TotalPatients = len(m.doctors), len(m.patients)
	specs := map[string]int{}
	for _, d := range m.doctors {
		if d.IsOnline {
			o.OnlineDoctors++
		}
		specs[d.Speciality]++
	}
	byStatus := map[model.Status]int{}
	for _, a := range m.appointments {
		if a.CreatedAt.Before(since) {
			continue
		}
		o.TotalAppointments++
		byStatus[a.Status]++
	}
	o.PendingAppointments = byStatus[model.StatusPending]
	o.CompletedAppointments = byStatus[model.StatusCompleted]
	for _, n := range m.Notifications {
		if !n.SentAt.Before(since) {
			o.RecentNotifications++
		}
	}
	for st, n := range byStatus {
		out.StatusTrends = append(out.StatusTrends, model.StatusCount{Status: st, Count: n})
	}
	sort.Slice(out.StatusTrends, func(i, j int) bool { return out.StatusTrends[i].Status < out.StatusTrends[j].Status })
	for s, n := range specs {
		out.Specialities = append(out.Specialities, model.SpecialityCount{Speciality: s, Count: n})
	}
	sort.Slice(out.Specialities, func(i, j int) bool {
		a, b := out.Specialities[i], out.Specialities[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Speciality < b.Speciality
	})
	return out, nil
}

func window[T any](all []T, p store.Page) []T {
	if p.Offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return all[p.Offset:end]
}

func timeEq(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// timeAfter orders nil last.
func timeAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}
