// README: Ride store backed by PostgreSQL.
package ride

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

func (s *PostgresStore) Create(ctx context.Context, r *Ride) error {
	var estSecs *int64
	if r.EstimatedTime != nil {
		v := int64(r.EstimatedTime.Seconds())
		estSecs = &v
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (
            id, patient_id, destination_id, driver_id, status, status_version,
            pickup_at, arrival_at, return_at, recurrence_group,
            estimated_km, estimated_secs, notes, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10,
            $11, $12, $13, $14
        )`,
		string(r.ID),
		string(r.PatientID),
		string(r.DestinationID),
		idPtr(r.DriverID),
		string(r.Status),
		r.StatusVersion,
		r.PickupAt, r.ArrivalAt, r.ReturnAt,
		idPtr(r.RecurrenceGroup),
		r.EstimatedKm, estSecs,
		r.Notes,
		r.CreatedAt,
	)
	return err
}

const rideColumns = `
    id, patient_id, destination_id, driver_id, status, status_version,
    pickup_at, arrival_at, return_at, recurrence_group,
    estimated_km, estimated_secs, COALESCE(notes, ''), created_at,
    confirmed_at, started_at, completed_at, cancelled_at, cancel_reason`

func (s *PostgresStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id))
	r, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) ApplyTransition(ctx context.Context, id types.ID, from Status, version int, ch Change) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET status = $1,
            status_version = status_version + 1,
            driver_id = CASE
                WHEN $2::bool THEN NULL
                WHEN $3::text IS NOT NULL THEN $3
                ELSE driver_id
            END,
            cancel_reason = COALESCE($4, cancel_reason),
            confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
            started_at = CASE WHEN $1 = 'in_progress' THEN NOW() ELSE started_at END,
            completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
        WHERE id = $5 AND status = $6 AND status_version = $7`,
		string(ch.To),
		ch.ClearDriver,
		idPtr(ch.Driver),
		ch.CancelReason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) ListOnDate(ctx context.Context, date time.Time) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+rideColumns+`
        FROM rides
        WHERE pickup_at >= $1 AND pickup_at < $2
        ORDER BY pickup_at`,
		startOfDay(date), startOfDay(date).AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PostgresStore) ListForDriverOnDate(ctx context.Context, driverID types.ID, date time.Time) ([]*Ride, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+rideColumns+`
        FROM rides
        WHERE driver_id = $1
          AND pickup_at >= $2 AND pickup_at < $3
          AND status NOT IN ('cancelled')
        ORDER BY pickup_at`,
		string(driverID), startOfDay(date), startOfDay(date).AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRides(rows)
}

func (s *PostgresStore) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM rides WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO ride_status_events (ride_id, from_status, to_status, action, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		string(e.RideID), string(e.FromStatus), string(e.ToStatus), string(e.Action), e.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*Ride, error) {
	var r Ride
	var driverID, group, cancelReason sql.NullString
	var returnAt, confirmedAt, startedAt, completedAt, cancelledAt sql.NullTime
	var estKm sql.NullFloat64
	var estSecs sql.NullInt64

	err := row.Scan(
		&r.ID, &r.PatientID, &r.DestinationID, &driverID, &r.Status, &r.StatusVersion,
		&r.PickupAt, &r.ArrivalAt, &returnAt, &group,
		&estKm, &estSecs, &r.Notes, &r.CreatedAt,
		&confirmedAt, &startedAt, &completedAt, &cancelledAt, &cancelReason,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		d := types.ID(driverID.String)
		r.DriverID = &d
	}
	if group.Valid {
		g := types.ID(group.String)
		r.RecurrenceGroup = &g
	}
	if cancelReason.Valid {
		r.CancelReason = &cancelReason.String
	}
	if estKm.Valid {
		r.EstimatedKm = &estKm.Float64
	}
	if estSecs.Valid {
		d := time.Duration(estSecs.Int64) * time.Second
		r.EstimatedTime = &d
	}
	r.ReturnAt = timePtr(returnAt)
	r.ConfirmedAt = timePtr(confirmedAt)
	r.StartedAt = timePtr(startedAt)
	r.CompletedAt = timePtr(completedAt)
	r.CancelledAt = timePtr(cancelledAt)
	return &r, nil
}

func scanRides(rows pgx.Rows) ([]*Ride, error) {
	var out []*Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
