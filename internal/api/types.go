// Package api holds the JSON shapes shared by the HTTP and gRPC surfaces.
package api

import (
	"encoding/json"
	"time"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
	"mediconnect/internal/service"
	"mediconnect/internal/store"
)

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Name       string `json:"name" validate:"required,max=200"`
	Role       string `json:"role" validate:"required"`
	Speciality string `json:"speciality" validate:"max=200"`
	Phone      string `json:"phone" validate:"max=50"`
}

func (r RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		Email:      r.Email,
		Password:   r.Password,
		Name:       r.Name,
		Role:       model.Role(r.Role),
		Speciality: r.Speciality,
		Phone:      r.Phone,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	Speciality *string `json:"speciality" validate:"omitempty,max=200"`
}

func (r UpdateProfileRequest) Input() service.UpdateProfileInput {
	return service.UpdateProfileInput{Name: r.Name, Phone: r.Phone, Speciality: r.Speciality}
}

type SetAvailabilityRequest struct {
	IsOnline *bool `json:"isOnline" validate:"required"`
}

// CreateAppointmentRequest leaves presence checks to the service so the
// messages match across transports.
type CreateAppointmentRequest struct {
	DoctorID        string  `json:"doctorId"`
	AppointmentDate string  `json:"appointmentDate"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

// Browsers post datetime-local values without a zone; those are read as UTC.
var appointmentLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseAppointmentDate(v string) (time.Time, error) {
	for _, layout := range appointmentLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Invalid("Invalid appointment date")
}

func (r CreateAppointmentRequest) Input() (service.CreateAppointmentInput, error) {
	in := service.CreateAppointmentInput{DoctorID: r.DoctorID, Notes: r.Notes}
	if r.AppointmentDate == "" {
		return in, nil
	}
	t, err := parseAppointmentDate(r.AppointmentDate)
	if err != nil {
		return in, err
	}
	in.AppointmentDate = t
	return in, nil
}

type UpdateAppointmentRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`

	// notesSet records a notes key in the body, including an explicit null.
	notesSet bool
}

func (r *UpdateAppointmentRequest) UnmarshalJSON(b []byte) error {
	type fields UpdateAppointmentRequest
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if err := json.Unmarshal(b, (*fields)(r)); err != nil {
		return err
	}
	_, r.notesSet = keys["notes"]
	return nil
}

// Input maps "notes": null to clearing the notes; an absent key leaves them.
func (r UpdateAppointmentRequest) Input() (service.UpdateAppointmentInput, error) {
	in := service.UpdateAppointmentInput{Notes: r.Notes, ClearNotes: r.notesSet && r.Notes == nil}
	if r.Status != nil {
		st, err := model.ParseStatus(*r.Status)
		if err != nil {
			return in, apperr.Invalid("Invalid status")
		}
		in.Status = &st
	}
	return in, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Doctor struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Speciality   string     `json:"speciality"`
	IsOnline     bool       `json:"isOnline"`
	LastOnlineAt *time.Time `json:"lastOnlineAt"`
}

func NewDoctor(d model.Doctor) Doctor {
	return Doctor{
		ID:           d.ID,
		UserID:       d.UserID,
		Name:         d.Name,
		Email:        d.Email,
		Speciality:   d.Speciality,
		IsOnline:     d.IsOnline,
		LastOnlineAt: d.LastOnlineAt,
	}
}

func NewDoctors(ds []model.Doctor) []Doctor {
	out := make([]Doctor, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDoctor(d))
	}
	return out
}

type Patient struct {
	ID     string  `json:"id"`
	UserID string  `json:"userId"`
	Name   string  `json:"name,omitempty"`
	Email  string  `json:"email,omitempty"`
	Phone  *string `json:"phone"`
}

func NewPatient(p model.Patient) Patient {
	return Patient{ID: p.ID, UserID: p.UserID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	Doctor    *Doctor    `json:"doctor,omitempty"`
	Patient   *Patient   `json:"patient,omitempty"`
}

func NewUser(p *model.Profile) User {
	u := User{
		ID:        p.User.ID,
		Email:     p.User.Email,
		Name:      p.User.Name,
		Role:      p.User.Role,
		CreatedAt: p.User.CreatedAt,
	}
	if p.Doctor != nil {
		d := NewDoctor(*p.Doctor)
		u.Doctor = &d
	}
	if p.Patient != nil {
		pt := NewPatient(*p.Patient)
		u.Patient = &pt
	}
	return u
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func NewAuthResponse(s *service.Session) AuthResponse {
	return AuthResponse{User: NewUser(s.Profile), Token: s.Token}
}

type Appointment struct {
	ID              string       `json:"id"`
	DoctorID        string       `json:"doctorId"`
	PatientID       string       `json:"patientId"`
	AppointmentDate time.Time    `json:"appointmentDate"`
	Status          model.Status `json:"status"`
	Notes           *string      `json:"notes"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Doctor          Doctor       `json:"doctor"`
	Patient         Patient      `json:"patient"`
}

func NewAppointment(a *model.AppointmentDetail) Appointment {
	return Appointment{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate,
		Status:          a.Status,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
		Doctor:          NewDoctor(a.Doctor),
		Patient:         NewPatient(a.Patient),
	}
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func NewPagination(p store.Page, total int) Pagination {
	pg := Pagination{Limit: p.Limit, Total: total, Page: 1}
	if p.Limit > 0 {
		pg.Page = p.Offset/p.Limit + 1
		pg.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	return pg
}

type DoctorList struct {
	Doctors    []Doctor   `json:"doctors"`
	Pagination Pagination `json:"pagination"`
}

type OnlineDoctors struct {
	Doctors []Doctor `json:"doctors"`
}

type AppointmentList struct {
	Appointments []Appointment `json:"appointments"`
	Pagination   Pagination    `json:"pagination"`
}

func NewAppointmentList(items []model.AppointmentDetail, total int, p store.Page) AppointmentList {
	out := AppointmentList{Appointments: make([]Appointment, 0, len(items)), Pagination: NewPagination(p, total)}
	for i := range items {
		out.Appointments = append(out.Appointments, NewAppointment(&items[i]))
	}
	return out
}

type Overview struct {
	TotalDoctors          int `json:"totalDoctors"`
	TotalPatients         int `json:"totalPatients"`
	OnlineDoctors         int `json:"onlineDoctors"`
	TotalAppointments     int `json:"totalAppointments"`
	PendingAppointments   int `json:"pendingAppointments"`
	CompletedAppointments int `json:"completedAppointments"`
	RecentNotifications   int `json:"recentNotifications"`
}

type StatusCount struct {
	Status model.Status `json:"status"`
	Count  int          `json:"count"`
}

type SpecialityCount struct {
	Speciality string `json:"speciality"`
	Count      int    `json:"count"`
}

type Analytics struct {
	Overview Overview `json:"overview"`
	Trends   struct {
		Appointments []StatusCount `json:"appointments"`
	} `json:"trends"`
	Distribution struct {
		Specialities []SpecialityCount `json:"specialities"`
	} `json:"distribution"`
	Period string `json:"period"`
}

func NewAnalytics(a *model.Analytics, period string) Analytics {
	out := Analytics{Overview: Overview(a.Overview), Period: period}
	out.Trends.Appointments = make([]StatusCount, 0, len(a.StatusTrends))
	for _, s := range a.StatusTrends {
		out.Trends.Appointments = append(out.Trends.Appointments, StatusCount(s))
	}
	out.Distribution.Specialities = make([]SpecialityCount, 0, len(a.Specialities))
	for _, s := range a.Specialities {
		out.Distribution.Specialities = append(out.Distribution.Specialities, SpecialityCount(s))
	}
	return out
}
