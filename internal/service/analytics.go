package service

import (
	"context"
	"time"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
	"mediconnect/internal/policy"
)

var periods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

type AnalyticsService struct {
	store AnalyticsStore
	now   func() time.Time
}

func NewAnalyticsService(s AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: s, now: time.Now}
}

// Get reports over the named window. Unknown periods fall back to 7d; the
// returned period is the one actually used.
func (s *AnalyticsService) Get(ctx context.Context, id auth.Identity, period string) (*model.Analytics, string, error) {
	if !policy.HasMinimumRole(id.Role, model.RoleDoctor) {
		return nil, "", apperr.Forbidden("Access denied")
	}
	d, ok := periods[period]
	if !ok {
		period, d = "7d", periods["7d"]
	}
	a, err := s.store.Analytics(ctx, s.now().UTC().Add(-d))
	if err != nil {
		return nil, "", err
	}
	return a, period, nil
}
