package store

import (
	"context"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
)

// CreateUser inserts the user and its role profile atomically. Exactly one of
// doctor or patient is expected for non-admin users.
func (s *Store) CreateUser(ctx context.Context, u *model.User, doctor *model.Doctor, patient *model.Patient) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, name, role)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role),
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User already exists")
		}
		return err
	}

	if doctor != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO doctors (id, user_id, speciality) VALUES ($1,$2,$3)`,
			doctor.ID, u.ID, doctor.Speciality,
		)
		if err != nil {
			return err
		}
	}
	if patient != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO patients (id, user_id, phone) VALUES ($1,$2,$3)`,
			patient.ID, u.ID, patient.Phone,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const userCols = `id, email, password_hash, name, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *Store) UpdateUserName(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// Profile loads a user with whichever role profile exists.
func (s *Store) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := &model.Profile{User: *u}
	switch u.Role {
	case model.RoleDoctor:
		d, err := s.DoctorByUserID(ctx, userID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		p.Doctor = d
	case model.RolePatient:
		pt, err := s.PatientByUserID(ctx, userID)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		p.Patient = pt
	}
	return p, nil
}
