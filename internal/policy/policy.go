// Package policy decides who may do what to which appointment or doctor.
// Every function is pure; callers load the records first.
package policy

import "mediconnect/internal/model"

// Actor is an authenticated caller. OwnedID is the doctor or patient profile
// id that belongs to the caller, empty for admins.
type Actor struct {
	UserID  string
	Role    model.Role
	OwnedID string
}

// CanActOnAppointment is true only for the doctor or the patient named on
// the appointment. Admins are not owners.
func CanActOnAppointment(a Actor, appt model.Appointment) bool {
	if a.OwnedID == "" {
		return false
	}
	switch a.Role {
	case model.RoleDoctor:
		return a.OwnedID == appt.DoctorID
	case model.RolePatient:
		return a.OwnedID == appt.PatientID
	default:
		return false
	}
}

// CanSetStatus adds the patient restriction on top of ownership: patients
// may only cancel.
func CanSetStatus(a Actor, appt model.Appointment, to model.Status) bool {
	if a.Role == model.RolePatient && to != model.StatusCancelled {
		return false
	}
	return CanActOnAppointment(a, appt)
}

func CanViewAppointment(a Actor, appt model.Appointment) bool {
	return a.Role == model.RoleAdmin || CanActOnAppointment(a, appt)
}

func CanCreateAppointment(r model.Role) bool {
	return r == model.RolePatient
}

func CanSetAvailability(r model.Role, userID string, d model.Doctor) bool {
	return r == model.RoleDoctor && userID != "" && d.UserID == userID
}

// HasMinimumRole compares hierarchy levels. Unknown roles fail every check.
func HasMinimumRole(r, min model.Role) bool {
	lvl := r.Level()
	return lvl > 0 && lvl >= min.Level()
}
