// README: Availability store backed by PostgreSQL.
package availability

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medicar/internal/types"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Schedule(ctx context.Context, driverID types.ID) (Schedule, error) {
	blocks, err := s.ListBlocks(ctx, driverID)
	if err != nil {
		return Schedule{}, err
	}
	absences, err := s.ListAbsences(ctx, driverID)
	if err != nil {
		return Schedule{}, err
	}
	return Schedule{Blocks: blocks, Absences: absences}, nil
}

func (s *PostgresStore) UpsertBlock(ctx context.Context, b *Block) error {
	// One block per (driver, weekday, start); a second insert updates the end.
	_, err := s.db.Exec(ctx, `
        INSERT INTO availability_blocks (id, driver_id, weekday, start_minute, end_minute)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (driver_id, weekday, start_minute)
        DO UPDATE SET end_minute = EXCLUDED.end_minute`,
		string(b.ID), string(b.DriverID), string(b.Weekday), int(b.Start), int(b.End),
	)
	return err
}

func (s *PostgresStore) ListBlocks(ctx context.Context, driverID types.ID) ([]Block, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, driver_id, weekday, start_minute, end_minute
        FROM availability_blocks
        WHERE driver_id = $1
        ORDER BY weekday, start_minute`, string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Block
	for rows.Next() {
		var b Block
		var start, end int
		if err := rows.Scan(&b.ID, &b.DriverID, &b.Weekday, &start, &end); err != nil {
			return nil, err
		}
		b.Start, b.End = ClockTime(start), ClockTime(end)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteBlock(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM availability_blocks WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddAbsence(ctx context.Context, a *Absence) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO absences (id, driver_id, from_date, to_date, reason)
        VALUES ($1, $2, $3, $4, $5)`,
		string(a.ID), string(a.DriverID), a.From, a.To, a.Reason,
	)
	return err
}

func (s *PostgresStore) ListAbsences(ctx context.Context, driverID types.ID) ([]Absence, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, driver_id, from_date, to_date, COALESCE(reason, '')
        FROM absences
        WHERE driver_id = $1
        ORDER BY from_date`, string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Absence
	for rows.Next() {
		var a Absence
		var from, to time.Time
		if err := rows.Scan(&a.ID, &a.DriverID, &from, &to, &a.Reason); err != nil {
			return nil, err
		}
		a.From, a.To = from, to
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteAbsence(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM absences WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
