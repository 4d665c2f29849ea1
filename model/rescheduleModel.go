// model/reschedule.go
package model

import "time"

type RescheduleStatus string

const (
	ReschedulePending         RescheduleStatus = "pending"
	RescheduleAwaitingPayment RescheduleStatus = "awaiting_payment"
	RescheduleApproved        RescheduleStatus = "approved"
	RescheduleRejected        RescheduleStatus = "rejected"
)

type RescheduleRequest struct {
	ID              int64            `json:"id"`
	BookingID       int64            `json:"booking_id"`
	OldKind         RideKind         `json:"old_kind"`
	OldRideID       int64            `json:"old_ride_id"`
	NewKind         RideKind         `json:"new_kind"`
	NewRideID       int64            `json:"new_ride_id"`
	SeatsBefore     int64            `json:"seats_before"`
	PriceBefore     float64          `json:"price_before"`
	PriceAfter      float64          `json:"price_after"`
	PriceDiff       float64          `json:"price_diff"`
	Status          RescheduleStatus `json:"status"`
	XenditInvoiceID *string          `json:"xendit_invoice_id,omitempty"`
	PaymentLink     *string          `json:"payment_link,omitempty"`
	PaymentTxnID    *string          `json:"payment_txn_id,omitempty"`
	ProcessedAt     *time.Time       `json:"processed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}
