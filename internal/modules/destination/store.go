// README: Destination store backed by PostgreSQL.
package destination

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

func (s *PostgresStore) Create(ctx context.Context, d *Destination) error {
	lat, lng := latLng(d.Location)
	_, err := s.db.Exec(ctx, `
        INSERT INTO destinations (
            id, name, address, lat, lng, type, opening_hours, arrival_note, active, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(d.ID), d.Name, d.Address, lat, lng, string(d.Type),
		d.OpeningHours, d.ArrivalNote, d.Active, d.CreatedAt,
	)
	return err
}

const destinationColumns = `
    id, name, COALESCE(address, ''), lat, lng, type,
    COALESCE(opening_hours, ''), COALESCE(arrival_note, ''), active, created_at`

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Destination, error) {
	row := s.db.QueryRow(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id = $1`, string(id))
	d, err := scanDestination(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *PostgresStore) Update(ctx context.Context, d *Destination) error {
	lat, lng := latLng(d.Location)
	tag, err := s.db.Exec(ctx, `
        UPDATE destinations
        SET name = $1, address = $2, lat = $3, lng = $4, type = $5,
            opening_hours = $6, arrival_note = $7
        WHERE id = $8`,
		d.Name, d.Address, lat, lng, string(d.Type),
		d.OpeningHours, d.ArrivalNote, string(d.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, includeInactive bool) ([]*Destination, error) {
	query := `SELECT ` + destinationColumns + ` FROM destinations`
	if !includeInactive {
		query += ` WHERE active`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetActive(ctx context.Context, id types.ID, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE destinations SET active = $1 WHERE id = $2`, active, string(id))
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

func scanDestination(row rowScanner) (*Destination, error) {
	var d Destination
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&d.ID, &d.Name, &d.Address, &lat, &lng, &d.Type,
		&d.OpeningHours, &d.ArrivalNote, &d.Active, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		d.Location = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &d, nil
}

func latLng(p *types.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lng
}
