package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mediconnect/internal/model"
)

var appt = model.Appointment{ID: "a-1", DoctorID: "d-1", PatientID: "p-1", Status: model.StatusPending}

func TestCanActOnAppointment(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owning doctor", Actor{Role: model.RoleDoctor, OwnedID: "d-1"}, true},
		{"other doctor", Actor{Role: model.RoleDoctor, OwnedID: "d-2"}, false},
		{"owning patient", Actor{Role: model.RolePatient, OwnedID: "p-1"}, true},
		{"other patient", Actor{Role: model.RolePatient, OwnedID: "p-2"}, false},
		{"patient with doctor's id", Actor{Role: model.RolePatient, OwnedID: "d-1"}, false},
		{"doctor with patient's id", Actor{Role: model.RoleDoctor, OwnedID: "p-1"}, false},
		{"admin", Actor{Role: model.RoleAdmin}, false},
		{"admin with matching id", Actor{Role: model.RoleAdmin, OwnedID: "d-1"}, false},
		{"unknown role", Actor{Role: "NURSE", OwnedID: "d-1"}, false},
		{"no profile", Actor{Role: model.RoleDoctor}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanActOnAppointment(tt.actor, appt))
		})
	}
}

func TestCanSetStatus(t *testing.T) {
	owner := Actor{Role: model.RolePatient, OwnedID: "p-1"}
	stranger := Actor{Role: model.RolePatient, OwnedID: "p-9"}
	doctor := Actor{Role: model.RoleDoctor, OwnedID: "d-1"}

	for _, s := range []model.Status{model.StatusPending, model.StatusConfirmed, model.StatusCompleted} {
		assert.False(t, CanSetStatus(owner, appt, s), "patient may not set %s", s)
		assert.True(t, CanSetStatus(doctor, appt, s), "doctor may set %s", s)
	}
	assert.True(t, CanSetStatus(owner, appt, model.StatusCancelled))
	assert.False(t, CanSetStatus(stranger, appt, model.StatusCancelled))
	assert.False(t, CanSetStatus(Actor{Role: model.RoleAdmin}, appt, model.StatusCancelled))
}

func TestCanViewAppointment(t *testing.T) {
	assert.True(t, CanViewAppointment(Actor{Role: model.RoleAdmin}, appt))
	assert.True(t, CanViewAppointment(Actor{Role: model.RolePatient, OwnedID: "p-1"}, appt))
	assert.False(t, CanViewAppointment(Actor{Role: model.RolePatient, OwnedID: "p-2"}, appt))
}

func TestCanCreateAppointment(t *testing.T) {
	assert.True(t, CanCreateAppointment(model.RolePatient))
	assert.False(t, CanCreateAppointment(model.RoleDoctor))
	assert.False(t, CanCreateAppointment(model.RoleAdmin))
	assert.False(t, CanCreateAppointment(""))
}

func TestCanSetAvailability(t *testing.T) {
	d := model.Doctor{ID: "d-1", UserID: "u-1"}
	assert.True(t, CanSetAvailability(model.RoleDoctor, "u-1", d))
	assert.False(t, CanSetAvailability(model.RoleDoctor, "u-2", d))
	assert.False(t, CanSetAvailability(model.RoleAdmin, "u-1", d))
	assert.False(t, CanSetAvailability(model.RolePatient, "u-1", d))
	assert.False(t, CanSetAvailability(model.RoleDoctor, "", model.Doctor{}))
}

func TestHasMinimumRole(t *testing.T) {
	roles := []model.Role{model.RolePatient, model.RoleDoctor, model.RoleAdmin}
	for i, r := range roles {
		for j, min := range roles {
			assert.Equal(t, i >= j, HasMinimumRole(r, min), "%s >= %s", r, min)
		}
	}
	for _, min := range append(roles, "") {
		assert.False(t, HasMinimumRole("GUEST", min))
		assert.False(t, HasMinimumRole("", min))
	}
}
