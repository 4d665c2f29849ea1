// repository/ride/repo.go
package riderepo

import (
	"context"
	"database/sql"
	"errors"

	"nebeng/model"
)

// ErrInsufficient is returned when a guarded decrement touches zero rows,
// meaning the counters moved under us. Normal-path validation happens on
// the locked row before Reserve is ever called; this is the backstop.
var ErrInsufficient = errors.New("insufficient capacity")

type Repo interface {
	Create(ctx context.Context, r *model.Ride) error
	List(ctx context.Context, kind string) ([]model.Ride, error)
	Detail(ctx context.Context, id int64) (*model.Ride, error)
	Deactivate(ctx context.Context, id, driverID int64) (bool, error)

	// Ledger primitives. All run inside the caller's transaction so the
	// check and the decrement share one row lock.
	LockByKind(ctx context.Context, tx *sql.Tx, kind model.RideKind, id int64) (*model.Ride, error)
	Reserve(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64) error
	Release(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64, reactivate bool) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const rideCols = `id, kind, driver_id, origin_name, origin_lat, origin_lng,
	dest_name, dest_lat, dest_lng,
	to_char(departure_date, 'YYYY-MM-DD'), to_char(departure_time, 'HH24:MI'),
	price, available_seats, jumlah_bagasi, status, created_at`

func scanRide(row *sql.Row) (*model.Ride, error) {
	r := &model.Ride{}
	err := row.Scan(
		&r.ID, &r.Kind, &r.DriverID, &r.OriginName, &r.OriginLat, &r.OriginLng,
		&r.DestName, &r.DestLat, &r.DestLng,
		&r.DepartureDate, &r.DepartureTime,
		&r.Price, &r.AvailableSeats, &r.JumlahBagasi, &r.Status, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *repo) Create(ctx context.Context, m *model.Ride) error {
	const q = `
INSERT INTO rides (kind, driver_id, origin_name, origin_lat, origin_lng,
	dest_name, dest_lat, dest_lng, departure_date, departure_time,
	price, available_seats, jumlah_bagasi, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'active')
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		m.Kind, m.DriverID, m.OriginName, m.OriginLat, m.OriginLng,
		m.DestName, m.DestLat, m.DestLng, m.DepartureDate, m.DepartureTime,
		m.Price, m.AvailableSeats, m.JumlahBagasi,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) List(ctx context.Context, kind string) ([]model.Ride, error) {
	q := `SELECT ` + rideCols + ` FROM rides WHERE status = 'active'`
	args := []any{}
	if kind != "" {
		q += ` AND kind = $1`
		args = append(args, kind)
	}
	q += ` ORDER BY departure_date, departure_time, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Ride
	for rows.Next() {
		var m model.Ride
		if err := rows.Scan(
			&m.ID, &m.Kind, &m.DriverID, &m.OriginName, &m.OriginLat, &m.OriginLng,
			&m.DestName, &m.DestLat, &m.DestLng,
			&m.DepartureDate, &m.DepartureTime,
			&m.Price, &m.AvailableSeats, &m.JumlahBagasi, &m.Status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Ride, error) {
	q := `SELECT ` + rideCols + ` FROM rides WHERE id = $1`
	return scanRide(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) Deactivate(ctx context.Context, id, driverID int64) (bool, error) {
	const q = `
UPDATE rides
SET status = 'inactive'
WHERE id = $1
  AND driver_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, driverID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) LockByKind(ctx context.Context, tx *sql.Tx, kind model.RideKind, id int64) (*model.Ride, error) {
	q := `SELECT ` + rideCols + ` FROM rides WHERE id = $1 AND kind = $2 FOR UPDATE`
	return scanRide(tx.QueryRowContext(ctx, q, id, kind))
}

// Reserve decrements both capacity dimensions and flips the ride
// inactive the moment its governing counter (seats for motor/mobil,
// bagasi otherwise) reaches zero. The WHERE guard plus GREATEST keep
// the counters from ever going below zero.
func (r *repo) Reserve(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64) error {
	const q = `
UPDATE rides
SET available_seats = GREATEST(available_seats - $2, 0),
    jumlah_bagasi   = GREATEST(jumlah_bagasi - $3, 0),
    status = CASE
        WHEN kind IN ('motor','mobil') AND available_seats - $2 <= 0 THEN 'inactive'
        WHEN kind IN ('barang','titip') AND jumlah_bagasi - $3 <= 0 THEN 'inactive'
        ELSE status
    END
WHERE id = $1
  AND available_seats >= $2
  AND jumlah_bagasi >= $3`
	res, err := tx.ExecContext(ctx, q, rideID, seats, cargo)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrInsufficient
	}
	return nil
}

// Release gives capacity back. Reactivation is opt-in: only the
// reschedule path revives an inactive ride, a plain release never does.
func (r *repo) Release(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64, reactivate bool) error {
	const q = `
UPDATE rides
SET available_seats = available_seats + $2,
    jumlah_bagasi   = jumlah_bagasi + $3,
    status = CASE
        WHEN $4 AND (available_seats + $2 > 0 OR jumlah_bagasi + $3 > 0) THEN 'active'
        ELSE status
    END
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, rideID, seats, cargo, reactivate)
	return err
}
