package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
	"mediconnect/internal/policy"
	"mediconnect/internal/store"
)

type DoctorService struct {
	doctors   DoctorStore
	listeners []AvailabilityListener
	log       *zap.Logger
	now       func() time.Time
}

func NewDoctorService(doctors DoctorStore, log *zap.Logger, listeners ...AvailabilityListener) *DoctorService {
	return &DoctorService{doctors: doctors, listeners: listeners, log: log, now: time.Now}
}

type ListDoctorsInput struct {
	Speciality string
	IsOnline   *bool
	Page       int
	Limit      int
}

func (s *DoctorService) List(ctx context.Context, in ListDoctorsInput) ([]model.Doctor, int, store.Page, error) {
	page := PageOf(in.Page, in.Limit)
	out, total, err := s.doctors.ListDoctors(ctx, store.DoctorFilter{
		Speciality: in.Speciality,
		IsOnline:   in.IsOnline,
		Page:       page,
	})
	return out, total, page, err
}

func (s *DoctorService) ListOnline(ctx context.Context) ([]model.Doctor, error) {
	return s.doctors.ListOnlineDoctors(ctx)
}

// SetAvailability flips the caller's own online flag. Listeners run after
// the write is committed and cannot fail the request.
func (s *DoctorService) SetAvailability(ctx context.Context, id auth.Identity, online bool) (*model.Doctor, error) {
	if id.Role != model.RoleDoctor {
		return nil, apperr.Forbidden("Only doctors can change availability")
	}
	d, err := s.doctors.DoctorByUserID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSetAvailability(id.Role, id.UserID, *d) {
		return nil, apperr.Forbidden("Access denied")
	}

	wasOnline, updated, err := s.doctors.SetOnline(ctx, d.ID, online, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.log.Info("doctor availability changed",
		zap.String("doctor_id", updated.ID),
		zap.Bool("was_online", wasOnline),
		zap.Bool("is_online", updated.IsOnline))

	for _, l := range s.listeners {
		l.AvailabilityChanged(ctx, *updated, wasOnline)
	}
	return updated, nil
}
