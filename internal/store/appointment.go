package store

import (
	"context"
	"fmt"
	"strings"

	"mediconnect/internal/apperr"
	"mediconnect/internal/model"
)

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, doctor_id, patient_id, appointment_date, status, notes)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at, updated_at`,
		a.ID, a.DoctorID, a.PatientID, a.AppointmentDate, string(a.Status), a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

const detailCols = `a.id, a.doctor_id, a.patient_id, a.appointment_date, a.status, a.notes, a.created_at, a.updated_at,
	d.user_id, d.speciality, du.name, du.email, p.user_id, p.phone, pu.name, pu.email`

const detailFrom = ` FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id
	JOIN patients p ON p.id = a.patient_id
	JOIN users pu ON pu.id = p.user_id`

func scanDetail(row interface{ Scan(...any) error }, extra ...any) (*model.AppointmentDetail, error) {
	ad := &model.AppointmentDetail{}
	a := &ad.Appointment
	var status string
	dest := append([]any{
		&a.ID, &a.DoctorID, &a.PatientID, &a.AppointmentDate, &status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&ad.Doctor.UserID, &ad.Doctor.Speciality, &ad.Doctor.Name, &ad.Doctor.Email,
		&ad.Patient.UserID, &ad.Patient.Phone, &ad.Patient.Name, &ad.Patient.Email,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Status = model.Status(status)
	ad.Doctor.ID = a.DoctorID
	ad.Patient.ID = a.PatientID
	return ad, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.AppointmentDetail, error) {
	ad, err := scanDetail(s.pool.QueryRow(ctx, `SELECT `+detailCols+detailFrom+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "Appointment")
	}
	return ad, nil
}

// AppointmentFilter scopes a listing. Empty DoctorID and PatientID list every
// appointment.
type AppointmentFilter struct {
	DoctorID  string
	PatientID string
	Status    model.Status
	Page
}

func (s *Store) ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.AppointmentDetail, int, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.DoctorID != "" {
		add(`a.doctor_id = $%d`, f.DoctorID)
	}
	if f.PatientID != "" {
		add(`a.patient_id = $%d`, f.PatientID)
	}
	if f.Status != "" {
		add(`a.status = $%d`, string(f.Status))
	}

	q := `SELECT ` + detailCols + `, COUNT(*) OVER()` + detailFrom
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	args = append(args, f.Limit, f.Offset)
	q += fmt.Sprintf(` ORDER BY a.appointment_date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.AppointmentDetail
	total := 0
	for rows.Next() {
		ad, err := scanDetail(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *ad)
	}
	return out, total, rows.Err()
}

// UpdateAppointment writes whichever of status and notes is non-nil. Empty
// notes are stored as NULL.
func (s *Store) UpdateAppointment(ctx context.Context, id string, status *model.Status, notes *string) error {
	var st *string
	if status != nil {
		v := string(*status)
		st = &v
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments
		 SET status = COALESCE($2, status),
		     notes = CASE WHEN $3::text IS NULL THEN notes ELSE NULLIF($3::text, '') END,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, st, notes,
	)
	if err != nil {
		return notFound(err, "Appointment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Appointment")
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return notFound(err, "Appointment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Appointment")
	}
	return nil
}
