// repository/booking/repo.go
package bookingrepo

import (
	"context"
	"database/sql"
	"time"

	"nebeng/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error)
	FindByNumber(ctx context.Context, number string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Booking, error)

	SetStatus(ctx context.Context, id int64, status model.BookingStatus) error
	MarkPaid(ctx context.Context, id int64) (bool, error)
	Cancel(ctx context.Context, tx *sql.Tx, id int64, reason string) error
	StartTrip(ctx context.Context, id int64, at time.Time) error

	// UpdatePing writes the latest driver position, binds driver_id when
	// still unset, and moves status in the same statement.
	UpdatePing(ctx context.Context, id int64, driverID int64, lat, lng float64, at time.Time, status model.BookingStatus) error

	Repoint(ctx context.Context, tx *sql.Tx, id int64, kind model.RideKind, rideID, seats, cargo int64) error
	ReplaceManifest(ctx context.Context, tx *sql.Tx, bookingID int64, ps []model.BookingPassenger) error
	Manifest(ctx context.Context, bookingID int64) ([]model.BookingPassenger, error)
	SetInvoice(ctx context.Context, id int64, invoiceID, link string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookingCols = `id, booking_number, user_id, ride_id, kind, seats, jumlah_bagasi,
	status, driver_id, last_lat, last_lng, last_location_at, trip_started_at,
	cancellation_reason, xendit_invoice_id, payment_link, created_at`

func scanBooking(row *sql.Row) (*model.Booking, error) {
	b := &model.Booking{}
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.UserID, &b.RideID, &b.Kind, &b.Seats, &b.JumlahBagasi,
		&b.Status, &b.DriverID, &b.LastLat, &b.LastLng, &b.LastLocationAt, &b.TripStartedAt,
		&b.CancellationReason, &b.XenditInvoiceID, &b.PaymentLink, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `
INSERT INTO bookings (booking_number, user_id, ride_id, kind, seats, jumlah_bagasi, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		b.BookingNumber, b.UserID, b.RideID, b.Kind, b.Seats, b.JumlahBagasi, b.Status,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) FindByNumber(ctx context.Context, number string) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE booking_number = $1`
	return scanBooking(r.db.QueryRowContext(ctx, q, number))
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID, &b.BookingNumber, &b.UserID, &b.RideID, &b.Kind, &b.Seats, &b.JumlahBagasi,
			&b.Status, &b.DriverID, &b.LastLat, &b.LastLng, &b.LastLocationAt, &b.TripStartedAt,
			&b.CancellationReason, &b.XenditInvoiceID, &b.PaymentLink, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) SetStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, status)
	return err
}

// MarkPaid flips pending -> paid. Zero rows means the booking already
// left pending (webhook redelivery) and the caller treats it as done.
func (r *repo) MarkPaid(ctx context.Context, id int64) (bool, error) {
	const q = `
UPDATE bookings
SET status = 'paid'
WHERE id = $1
  AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Cancel(ctx context.Context, tx *sql.Tx, id int64, reason string) error {
	const q = `
UPDATE bookings
SET status = 'cancelled',
    cancellation_reason = $2
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, reason)
	return err
}

func (r *repo) StartTrip(ctx context.Context, id int64, at time.Time) error {
	const q = `
UPDATE bookings
SET status = 'menuju_penjemputan',
    trip_started_at = $2
WHERE id = $1
  AND status IN ('pending','paid','confirmed')`
	_, err := r.db.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) UpdatePing(ctx context.Context, id int64, driverID int64, lat, lng float64, at time.Time, status model.BookingStatus) error {
	const q = `
UPDATE bookings
SET driver_id = COALESCE(driver_id, $2),
    last_lat = $3,
    last_lng = $4,
    last_location_at = $5,
    status = $6
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, driverID, lat, lng, at, status)
	return err
}

func (r *repo) Repoint(ctx context.Context, tx *sql.Tx, id int64, kind model.RideKind, rideID, seats, cargo int64) error {
	const q = `
UPDATE bookings
SET kind = $2,
    ride_id = $3,
    seats = $4,
    jumlah_bagasi = $5
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, kind, rideID, seats, cargo)
	return err
}

func (r *repo) ReplaceManifest(ctx context.Context, tx *sql.Tx, bookingID int64, ps []model.BookingPassenger) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_passengers WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}
	const ins = `INSERT INTO booking_passengers (booking_id, name, phone) VALUES ($1,$2,$3)`
	for _, p := range ps {
		if _, err := tx.ExecContext(ctx, ins, bookingID, p.Name, p.Phone); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Manifest(ctx context.Context, bookingID int64) ([]model.BookingPassenger, error) {
	const q = `SELECT id, booking_id, name, phone FROM booking_passengers WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookingPassenger
	for rows.Next() {
		var p model.BookingPassenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Name, &p.Phone); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repo) SetInvoice(ctx context.Context, id int64, invoiceID, link string) error {
	const q = `UPDATE bookings SET xendit_invoice_id = $2, payment_link = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, invoiceID, link)
	return err
}
