// repository/reschedule/repo.go
package reschedulerepo

import (
	"context"
	"database/sql"

	"nebeng/model"
)

type Repo interface {
	Insert(ctx context.Context, rr *model.RescheduleRequest) error
	GetByID(ctx context.Context, id int64) (*model.RescheduleRequest, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RescheduleRequest, error)
	FindByInvoiceID(ctx context.Context, invoiceID string) (*model.RescheduleRequest, error)
	SetInvoice(ctx context.Context, id int64, invoiceID, link string) error
	MarkApproved(ctx context.Context, tx *sql.Tx, id int64, paymentTxnID string) error
	MarkRejected(ctx context.Context, tx *sql.Tx, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const cols = `id, booking_id, old_kind, old_ride_id, new_kind, new_ride_id,
	seats_before, price_before, price_after, price_diff, status,
	xendit_invoice_id, payment_link, payment_txn_id, processed_at, created_at`

func scan(row *sql.Row) (*model.RescheduleRequest, error) {
	rr := &model.RescheduleRequest{}
	err := row.Scan(
		&rr.ID, &rr.BookingID, &rr.OldKind, &rr.OldRideID, &rr.NewKind, &rr.NewRideID,
		&rr.SeatsBefore, &rr.PriceBefore, &rr.PriceAfter, &rr.PriceDiff, &rr.Status,
		&rr.XenditInvoiceID, &rr.PaymentLink, &rr.PaymentTxnID, &rr.ProcessedAt, &rr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rr, nil
}

func (r *repo) Insert(ctx context.Context, rr *model.RescheduleRequest) error {
	const q = `
INSERT INTO reschedule_requests (booking_id, old_kind, old_ride_id, new_kind, new_ride_id,
	seats_before, price_before, price_after, price_diff, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		rr.BookingID, rr.OldKind, rr.OldRideID, rr.NewKind, rr.NewRideID,
		rr.SeatsBefore, rr.PriceBefore, rr.PriceAfter, rr.PriceDiff, rr.Status,
	).Scan(&rr.ID, &rr.CreatedAt)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.RescheduleRequest, error) {
	q := `SELECT ` + cols + ` FROM reschedule_requests WHERE id = $1`
	return scan(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RescheduleRequest, error) {
	q := `SELECT ` + cols + ` FROM reschedule_requests WHERE id = $1 FOR UPDATE`
	return scan(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) FindByInvoiceID(ctx context.Context, invoiceID string) (*model.RescheduleRequest, error) {
	q := `SELECT ` + cols + ` FROM reschedule_requests WHERE xendit_invoice_id = $1`
	return scan(r.db.QueryRowContext(ctx, q, invoiceID))
}

func (r *repo) SetInvoice(ctx context.Context, id int64, invoiceID, link string) error {
	const q = `UPDATE reschedule_requests SET xendit_invoice_id = $2, payment_link = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, invoiceID, link)
	return err
}

func (r *repo) MarkApproved(ctx context.Context, tx *sql.Tx, id int64, paymentTxnID string) error {
	const q = `
UPDATE reschedule_requests
SET status = 'approved',
    payment_txn_id = NULLIF($2, ''),
    processed_at = NOW()
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, paymentTxnID)
	return err
}

func (r *repo) MarkRejected(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `
UPDATE reschedule_requests
SET status = 'rejected',
    processed_at = NOW()
WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
