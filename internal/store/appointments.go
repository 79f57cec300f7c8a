package store

import (
	"context"
	"fmt"
)

// AppointmentStore reads scheduled appointments. This service never creates
// appointment rows; booking is owned by the scheduling backend.
type AppointmentStore struct {
	db DB
}

// NewAppointmentStore creates an appointment store backed by the given database.
func NewAppointmentStore(db DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

// ListRecent returns the patient's most recent appointments, newest first.
func (s *AppointmentStore) ListRecent(ctx context.Context, userID string, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 3
	}
	query := `
		SELECT
			a.id::text,
			a.appointment_date::text,
			a.appointment_time::text,
			a.status,
			a.appointment_type,
			a.dentist_name,
			COALESCE(a.symptoms, ''),
			COALESCE(a.patient_notes, '')
		FROM appointments a
		WHERE a.patient_id::text = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: select appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]Appointment, 0, limit)
	for rows.Next() {
		var apt Appointment
		if err := rows.Scan(
			&apt.ID,
			&apt.Date,
			&apt.Time,
			&apt.Status,
			&apt.Type,
			&apt.Dentist,
			&apt.Symptoms,
			&apt.Notes,
		); err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		appointments = append(appointments, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate appointments: %w", err)
	}
	return appointments, nil
}
