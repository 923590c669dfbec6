package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
)

const doctorCols = `d.id, d.user_id, d.speciality, d.is_online, d.last_online_at, d.created_at, u.name, u.email`

const doctorFrom = ` FROM doctors d JOIN users u ON u.id = d.user_id`

func scanDoctor(row interface{ Scan(...any) error }, extra ...any) (*model.Doctor, error) {
	d := &model.Doctor{}
	dest := append([]any{&d.ID, &d.UserID, &d.Speciality, &d.IsOnline, &d.LastOnlineAt, &d.CreatedAt, &d.Name, &d.Email}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) DoctorByID(ctx context.Context, id string) (*model.Doctor, error) {
	d, err := scanDoctor(s.pool.QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "Doctor")
	}
	return d, nil
}

func (s *Store) DoctorByUserID(ctx context.Context, userID string) (*model.Doctor, error) {
	d, err := scanDoctor(s.pool.QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.user_id = $1`, userID))
	if err != nil {
		return nil, notFound(err, "Doctor profile")
	}
	return d, nil
}

type DoctorFilter struct {
	Speciality string
	IsOnline   *bool
	Page
}

// ListDoctors returns one page plus the total number of matches. Online
// doctors come first, then the most recently online, then by name.
func (s *Store) ListDoctors(ctx context.Context, f DoctorFilter) ([]model.Doctor, int, error) {
	var where []string
	var args []any
	if f.Speciality != "" {
		args = append(args, f.Speciality)
		where = append(where, fmt.Sprintf(`d.speciality ILIKE '%%' || $%d || '%%'`, len(args)))
	}
	if f.IsOnline != nil {
		args = append(args, *f.IsOnline)
		where = append(where, fmt.Sprintf(`d.is_online = $%d`, len(args)))
	}

	q := `SELECT ` + doctorCols + `, COUNT(*) OVER()` + doctorFrom
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(` ORDER BY d.is_online DESC, d.last_online_at DESC NULLS LAST, u.name ASC LIMIT $%d OFFSET $%d`,
		len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Doctor
	total := 0
	for rows.Next() {
		d, err := scanDoctor(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (s *Store) ListOnlineDoctors(ctx context.Context) ([]model.Doctor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+doctorCols+doctorFrom+` WHERE d.is_online = TRUE ORDER BY d.last_online_at DESC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// SetOnline writes the availability flag and returns the value it replaced.
// The read and the write happen under one row lock, so two concurrent
// false->true requests cannot both observe false. last_online_at moves only
// on that edge.
func (s *Store) SetOnline(ctx context.Context, doctorID string, online bool, now time.Time) (prev bool, d *model.Doctor, err error) {
	row := s.pool.QueryRow(ctx,
		`WITH prev AS (
			SELECT id, is_online FROM doctors WHERE id = $1 FOR UPDATE
		 )
		 UPDATE doctors d
		 SET is_online = $2,
		     last_online_at = CASE WHEN $2 AND NOT prev.is_online THEN $3 ELSE d.last_online_at END
		 FROM prev, users u
		 WHERE d.id = prev.id AND u.id = d.user_id
		 RETURNING `+doctorCols+`, prev.is_online`,
		doctorID, online, now,
	)
	d, err = scanDoctor(row, &prev)
	if err != nil {
		return false, nil, notFound(err, "Doctor")
	}
	return prev, d, nil
}

func (s *Store) UpdateSpeciality(ctx context.Context, doctorID, speciality string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE doctors SET speciality = $1 WHERE id = $2`, speciality, doctorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Doctor")
	}
	return nil
}
