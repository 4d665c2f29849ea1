// model/booking.go
package model

import "time"

type BookingStatus string

const (
	BookingPending           BookingStatus = "pending"
	BookingPaid              BookingStatus = "paid"
	BookingConfirmed         BookingStatus = "confirmed"
	BookingMenunggu          BookingStatus = "menunggu"
	BookingMenujuPenjemputan BookingStatus = "menuju_penjemputan"
	BookingDiPenjemputan     BookingStatus = "sudah_di_penjemputan"
	BookingMenujuTujuan      BookingStatus = "menuju_tujuan"
	BookingSampaiTujuan      BookingStatus = "sudah_sampai_tujuan"
	BookingPerjalanan        BookingStatus = "sedang_dalam_perjalanan"
	BookingCancelled         BookingStatus = "cancelled"
)

// AllBookingStatuses is the whitelist for the explicit status update
// endpoint. Anything else is a validation error.
var AllBookingStatuses = map[BookingStatus]bool{
	BookingPending:           true,
	BookingPaid:              true,
	BookingConfirmed:         true,
	BookingMenunggu:          true,
	BookingMenujuPenjemputan: true,
	BookingDiPenjemputan:     true,
	BookingMenujuTujuan:      true,
	BookingSampaiTujuan:      true,
	BookingPerjalanan:        true,
	BookingCancelled:         true,
}

func (s BookingStatus) Terminal() bool {
	return s == BookingSampaiTujuan || s == BookingCancelled
}

type Booking struct {
	ID                 int64         `json:"id"`
	BookingNumber      string        `json:"booking_number"`
	UserID             int64         `json:"user_id"`
	RideID             int64         `json:"ride_id"`
	Kind               RideKind      `json:"kind"`
	Seats              int64         `json:"seats"`
	JumlahBagasi       int64         `json:"jumlah_bagasi"`
	Status             BookingStatus `json:"status"`
	DriverID           *int64        `json:"driver_id,omitempty"`
	LastLat            *float64      `json:"last_lat,omitempty"`
	LastLng            *float64      `json:"last_lng,omitempty"`
	LastLocationAt     *time.Time    `json:"last_location_at,omitempty"`
	TripStartedAt      *time.Time    `json:"trip_started_at,omitempty"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	XenditInvoiceID    *string       `json:"xendit_invoice_id,omitempty"`
	PaymentLink        *string       `json:"payment_link,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

type BookingPassenger struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}
