// Package lifecycle holds the appointment status machine.
package lifecycle

import (
	"errors"

	"mediconnect/internal/model"
)

var (
	ErrTerminal          = errors.New("appointment is already closed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotPermitted      = errors.New("patients can only cancel appointments")
)

var edges = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

func Initial() model.Status { return model.StatusPending }

// Next lists the statuses reachable in one step.
func Next(from model.Status) []model.Status {
	return append([]model.Status(nil), edges[from]...)
}

func Allowed(from, to model.Status) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check validates a requested move by a caller of the given role. Ownership
// is not checked here.
func Check(role model.Role, from, to model.Status) error {
	if from.Terminal() {
		return ErrTerminal
	}
	if !Allowed(from, to) {
		return ErrInvalidTransition
	}
	if role == model.RolePatient && to != model.StatusCancelled {
		return ErrNotPermitted
	}
	return nil
}
