package service

import (
	"context"
	"strings"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
)

type ProfileService struct {
	users UserStore
}

func NewProfileService(users UserStore) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) Get(ctx context.Context, id auth.Identity) (*model.Profile, error) {
	return s.users.Profile(ctx, id.UserID)
}

// UpdateProfileInput fields are optional. Phone applies to patients and
// Speciality to doctors; each is ignored for other roles.
type UpdateProfileInput struct {
	Name       *string
	Phone      *string
	Speciality *string
}

func (s *ProfileService) Update(ctx context.Context, id auth.Identity, in UpdateProfileInput) (*model.Profile, error) {
	p, err := s.users.Profile(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("Name cannot be empty")
		}
		if err := s.users.UpdateUserName(ctx, id.UserID, name); err != nil {
			return nil, err
		}
	}
	if in.Phone != nil && p.Patient != nil {
		phone := strings.TrimSpace(*in.Phone)
		var v *string
		if phone != "" {
			v = &phone
		}
		if err := s.users.UpdatePatientPhone(ctx, p.Patient.ID, v); err != nil {
			return nil, err
		}
	}
	if in.Speciality != nil && p.Doctor != nil {
		spec := strings.TrimSpace(*in.Speciality)
		if spec == "" {
			return nil, apperr.Invalid("Speciality cannot be empty")
		}
		if err := s.users.UpdateSpeciality(ctx, p.Doctor.ID, spec); err != nil {
			return nil, err
		}
	}
	return s.users.Profile(ctx, id.UserID)
}
