// README: Patient store backed by PostgreSQL.
package patient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medicar/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p *Patient) error {
	lat, lng := latLng(p.Location)
	_, err := s.db.Exec(ctx, `
        INSERT INTO patients (
            id, first_name, last_name, address, lat, lng, phone,
            wheelchair, walker, needs_assistance, notes, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		string(p.ID), p.FirstName, p.LastName, p.Address, lat, lng, p.Phone,
		p.Wheelchair, p.Walker, p.NeedsAssistance, p.Notes, p.CreatedAt,
	)
	return err
}

const patientColumns = `
    id, first_name, last_name, COALESCE(address, ''), lat, lng, COALESCE(phone, ''),
    wheelchair, walker, needs_assistance, COALESCE(notes, ''), created_at`

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Patient, error) {
	row := s.db.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, string(id))
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) Update(ctx context.Context, p *Patient) error {
	lat, lng := latLng(p.Location)
	tag, err := s.db.Exec(ctx, `
        UPDATE patients
        SET first_name = $1, last_name = $2, address = $3, lat = $4, lng = $5,
            phone = $6, wheelchair = $7, walker = $8, needs_assistance = $9, notes = $10
        WHERE id = $11`,
		p.FirstName, p.LastName, p.Address, lat, lng,
		p.Phone, p.Wheelchair, p.Walker, p.NeedsAssistance, p.Notes,
		string(p.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Patient, error) {
	rows, err := s.db.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Address, &lat, &lng, &p.Phone,
		&p.Wheelchair, &p.Walker, &p.NeedsAssistance, &p.Notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		p.Location = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &p, nil
}

func latLng(p *types.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lng
}
