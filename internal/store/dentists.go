package store

import (
	"context"
	"fmt"
)

// DentistStore reads practitioner profiles and weekly availability.
type DentistStore struct {
	db DB
}

// NewDentistStore creates a dentist store backed by the given database.
func NewDentistStore(db DB) *DentistStore {
	return &DentistStore{db: db}
}

// ListAvailable returns dentists ordered by rating, optionally filtered by a
// case-insensitive specialization substring.
func (s *DentistStore) ListAvailable(ctx context.Context, specialization string) ([]Dentist, error) {
	var (
		query string
		args  []any
	)
	if specialization != "" {
		query = `
			SELECT id::text, name, email, specialization, COALESCE(bio, ''),
			       COALESCE(rating, 0), COALESCE(reviews_count, 0)
			FROM dentists
			WHERE LOWER(specialization) LIKE LOWER($1)
			ORDER BY rating DESC
			LIMIT 10
		`
		args = []any{"%" + specialization + "%"}
	} else {
		query = `
			SELECT id::text, name, email, specialization, COALESCE(bio, ''),
			       COALESCE(rating, 0), COALESCE(reviews_count, 0)
			FROM dentists
			ORDER BY rating DESC
			LIMIT 10
		`
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: select dentists: %w", err)
	}
	defer rows.Close()

	var dentists []Dentist
	for rows.Next() {
		var d Dentist
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Email,
			&d.Specialization,
			&d.Bio,
			&d.Rating,
			&d.Reviews,
		); err != nil {
			return nil, fmt.Errorf("store: scan dentist: %w", err)
		}
		dentists = append(dentists, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate dentists: %w", err)
	}
	return dentists, nil
}

// Availability returns the dentist's open slots ordered by start time.
func (s *DentistStore) Availability(ctx context.Context, dentistID string) ([]AvailabilitySlot, error) {
	query := `
		SELECT da.id::text, da.day_of_week, da.start_time::text, da.end_time::text, da.is_available
		FROM dentist_availability da
		WHERE da.dentist_id::text = $1
		AND da.is_available = true
		ORDER BY da.start_time
	`
	rows, err := s.db.Query(ctx, query, dentistID)
	if err != nil {
		return nil, fmt.Errorf("store: select availability: %w", err)
	}
	defer rows.Close()

	var slots []AvailabilitySlot
	for rows.Next() {
		var slot AvailabilitySlot
		if err := rows.Scan(
			&slot.ID,
			&slot.Day,
			&slot.Start,
			&slot.End,
			&slot.Available,
		); err != nil {
			return nil, fmt.Errorf("store: scan availability slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate availability: %w", err)
	}
	return slots, nil
}
