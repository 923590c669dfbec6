package store

import (
	"context"
	"time"

	"mediconnect/internal/model"
)

func (s *Store) Analytics(ctx context.Context, since time.Time) (*model.Analytics, error) {
	out := &model.Analytics{}
	o := &out.Overview
	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM doctors),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM doctors WHERE is_online),
			(SELECT COUNT(*) FROM appointments WHERE created_at >= $1),
			(SELECT COUNT(*) FROM appointments WHERE created_at >= $1 AND status = 'PENDING'),
			(SELECT COUNT(*) FROM appointments WHERE created_at >= $1 AND status = 'COMPLETED'),
			(SELECT COUNT(*) FROM notifications WHERE sent_at >= $1)`,
		since,
	).Scan(&o.TotalDoctors, &o.TotalPatients, &o.OnlineDoctors, &o.TotalAppointments,
		&o.PendingAppointments, &o.CompletedAppointments, &o.RecentNotifications)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM appointments WHERE created_at >= $1 GROUP BY status ORDER BY status`, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			rows.Close()
			return nil, err
		}
		out.StatusTrends = append(out.StatusTrends, model.StatusCount{Status: model.Status(st), Count: n})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT speciality, COUNT(*) FROM doctors GROUP BY speciality ORDER BY COUNT(*) DESC, speciality`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc model.SpecialityCount
		if err := rows.Scan(&sc.Speciality, &sc.Count); err != nil {
			return nil, err
		}
		out.Specialities = append(out.Specialities, sc)
	}
	return out, rows.Err()
}
