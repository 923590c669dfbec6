package store

import (
	"context"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
)

func (s *Store) PatientByUserID(ctx context.Context, userID string) (*model.Patient, error) {
	p := &model.Patient{}
	err := s.pool.QueryRow(ctx,
		`SELECT p.id, p.user_id, p.phone, u.name, u.email
		 FROM patients p JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.Phone, &p.Name, &p.Email)
	if err != nil {
		return nil, notFound(err, "Patient profile")
	}
	return p, nil
}

func (s *Store) UpdatePatientPhone(ctx context.Context, patientID string, phone *string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE patients SET phone = $1 WHERE id = $2`, phone, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Patient profile")
	}
	return nil
}

// PatientEmails lists every registered patient's address, unfiltered.
func (s *Store) PatientEmails(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.email FROM patients p JOIN users u ON u.id = p.user_id ORDER BY u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
