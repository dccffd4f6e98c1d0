// README: Driver store backed by PostgreSQL.
package driver

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

func (s *PostgresStore) Create(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (id, name, phone, vehicle_type, vehicle_plate, user_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(d.ID), d.Name, d.Phone, d.VehicleType, d.VehiclePlate, userIDPtr(d.UserID), d.CreatedAt,
	)
	return err
}

const driverColumns = `
    id, name, COALESCE(phone, ''), COALESCE(vehicle_type, ''),
    COALESCE(vehicle_plate, ''), user_id, created_at`

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, string(id))
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (s *PostgresStore) Update(ctx context.Context, d *Driver) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE drivers
        SET name = $1, phone = $2, vehicle_type = $3, vehicle_plate = $4, user_id = $5
        WHERE id = $6`,
		d.Name, d.Phone, d.VehicleType, d.VehiclePlate, userIDPtr(d.UserID), string(d.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, string(id))
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

func scanDriver(row rowScanner) (*Driver, error) {
	var d Driver
	var userID sql.NullString
	err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.VehicleType, &d.VehiclePlate, &userID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		u := types.ID(userID.String)
		d.UserID = &u
	}
	return &d, nil
}

func userIDPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
