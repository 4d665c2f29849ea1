package bookingsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	bookingrepo "nebeng/repository/booking"
	riderepo "nebeng/repository/ride"
	xenditrepo "nebeng/repository/xendit"

	"nebeng/model"
	"nebeng/util/geo"
)

// errors used by controllers

type ErrCode string

const (
	ErrRideNotFound ErrCode = "RIDE_NOT_FOUND"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNoCapacity   ErrCode = "NO_CAPACITY"
	ErrForbidden    ErrCode = "FORBIDDEN"
	ErrBadStatus    ErrCode = "BAD_STATUS"
	ErrBadInput     ErrCode = "BAD_INPUT"
)

type codedError struct {
	code  ErrCode
	avail int64
}

func (e codedError) Error() string    { return string(e.code) }
func (e codedError) Code() ErrCode    { return e.code }
func (e codedError) Available() int64 { return e.avail }

func makeErr(c ErrCode) error { return codedError{code: c} }

func noCapacity(avail int64) error { return codedError{code: ErrNoCapacity, avail: avail} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Available extracts the remaining capacity carried by a NO_CAPACITY
// error so clients can retry with a smaller request.
func Available(err error) int64 {
	var ce interface{ Available() int64 }
	if errors.As(err, &ce) {
		return ce.Available()
	}
	return 0
}

// dto

type CreateReq struct {
	RideID       int64
	Kind         model.RideKind // empty = resolve by precedence
	Seats        int64
	JumlahBagasi int64
}

type Created struct {
	Booking     *model.Booking
	PaymentLink string
}

type PingReq struct {
	Lat       float64
	Lng       float64
	Timestamp *time.Time
	Accuracy  *float64
	Speed     *float64
}

type PingResult struct {
	Booking        *model.Booking
	DistanceM      float64
	StatusChanged  bool
	PreviousStatus model.BookingStatus
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string)
}

type Service interface {
	// Create runs the reservation: resolve the ride, validate and
	// decrement capacity, and persist the booking in one transaction.
	Create(ctx context.Context, userID int64, req CreateReq) (*Created, error)

	// Get returns the booking, opportunistically advancing it to
	// menuju_penjemputan when the ride's departure time has passed.
	Get(ctx context.Context, id int64) (*model.Booking, error)

	// Ping processes a driver location update.
	Ping(ctx context.Context, bookingID, userID int64, req PingReq) (*PingResult, error)

	UpdateStatus(ctx context.Context, bookingID, userID int64, status model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, userID int64, reason string) error

	// CancelExpired cancels a still-pending booking and gives its
	// capacity back; used by the payment-expiry path.
	CancelExpired(ctx context.Context, bookingID int64, reason string) error

	My(ctx context.Context, userID int64) ([]model.Booking, error)
}

type service struct {
	db *sql.DB
	br bookingrepo.Repo
	rr riderepo.Repo
	x  xenditrepo.Repo
	m  *Machine
	n  Notifier
}

func New(db *sql.DB, br bookingrepo.Repo, rr riderepo.Repo, x xenditrepo.Repo, m *Machine, n Notifier) Service {
	return &service{db: db, br: br, rr: rr, x: x, m: m, n: n}
}

// normalizeUnits applies the product defaults: seat kinds book at least
// one seat, and any cargo-capable ride consumes at least one bagasi
// unit even when the request omits it.
func normalizeUnits(ride *model.Ride, seats, cargo int64) (int64, int64) {
	if ride.Kind.SeatBased() {
		if seats <= 0 {
			seats = 1
		}
	} else {
		seats = 0
	}
	if cargo <= 0 && ride.JumlahBagasi > 0 {
		cargo = 1
	}
	if cargo < 0 {
		cargo = 0
	}
	return seats, cargo
}

// validateCapacity checks the requested units against the locked ride's
// counters. The returned error carries the current availability.
func validateCapacity(ride *model.Ride, seats, cargo int64) error {
	if ride.Status == model.RideInactive {
		if ride.Kind.SeatBased() {
			return noCapacity(ride.AvailableSeats)
		}
		return noCapacity(ride.JumlahBagasi)
	}
	if ride.Kind.SeatBased() && seats > ride.AvailableSeats {
		return noCapacity(ride.AvailableSeats)
	}
	if cargo > ride.JumlahBagasi {
		return noCapacity(ride.JumlahBagasi)
	}
	return nil
}

var kindPrefix = map[model.RideKind]string{
	model.KindMotor:  "MTR",
	model.KindMobil:  "MBL",
	model.KindBarang: "BRG",
	model.KindTitip:  "TTP",
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// genBookingNumber builds <prefix>-<yyyymmddHHMM>-<4 random chars>.
// The suffix is short on purpose; a collision bounces off the unique
// index and the caller retries.
func genBookingNumber(kind model.RideKind, now time.Time) string {
	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteByte(base36[rand.Intn(len(base36))])
	}
	return fmt.Sprintf("%s-%s-%s", kindPrefix[kind], now.Format("200601021504"), sb.String())
}

func (s *service) Create(ctx context.Context, userID int64, req CreateReq) (out *Created, err error) {
	if req.RideID <= 0 {
		return nil, makeErr(ErrBadInput)
	}
	if req.Kind != "" && !req.Kind.Valid() {
		return nil, makeErr(ErrBadInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ride, err := s.resolveRide(ctx, tx, req.Kind, req.RideID)
	if err != nil {
		return nil, err
	}

	seats, cargo := normalizeUnits(ride, req.Seats, req.JumlahBagasi)
	if err = validateCapacity(ride, seats, cargo); err != nil {
		return nil, err
	}

	b := &model.Booking{
		BookingNumber: genBookingNumber(ride.Kind, time.Now()),
		UserID:        userID,
		RideID:        ride.ID,
		Kind:          ride.Kind,
		Seats:         seats,
		JumlahBagasi:  cargo,
		Status:        model.BookingPending,
	}
	if err = s.br.Insert(ctx, tx, b); err != nil {
		return nil, err
	}

	// booking row and decrement commit or roll back together
	if err = s.rr.Reserve(ctx, tx, ride.ID, seats, cargo); err != nil {
		if errors.Is(err, riderepo.ErrInsufficient) {
			err = noCapacity(currentUnits(ride))
		}
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	out = &Created{Booking: b}

	// invoice creation is best-effort: the booking stays pending and
	// payable through a retried invoice if the gateway hiccups
	amount := ride.Price * float64(bookedUnits(ride.Kind, seats, cargo))
	inv, ierr := s.x.CreateInvoice(xenditrepo.CreateInvoiceReq{
		ExternalID:  b.BookingNumber,
		Amount:      amount,
		Description: "Nebeng booking " + b.BookingNumber,
		ExpirySec:   int((24 * time.Hour).Seconds()),
	})
	if ierr == nil {
		_ = s.br.SetInvoice(ctx, b.ID, inv.InvoiceID, inv.InvoiceURL)
		b.XenditInvoiceID = &inv.InvoiceID
		b.PaymentLink = &inv.InvoiceURL
		out.PaymentLink = inv.InvoiceURL
	}
	return out, nil
}

func bookedUnits(kind model.RideKind, seats, cargo int64) int64 {
	if kind.SeatBased() {
		return seats
	}
	return cargo
}

func currentUnits(ride *model.Ride) int64 {
	if ride.Kind.SeatBased() {
		return ride.AvailableSeats
	}
	return ride.JumlahBagasi
}

// resolveRide locks the ride row. When the kind is not given the four
// storages are tried in the fixed precedence order; titip before
// barang, since those two shared id ranges historically.
func (s *service) resolveRide(ctx context.Context, tx *sql.Tx, kind model.RideKind, id int64) (*model.Ride, error) {
	if kind != "" {
		ride, err := s.rr.LockByKind(ctx, tx, kind, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRideNotFound)
		}
		return ride, err
	}
	for _, k := range model.KindLookupOrder {
		ride, err := s.rr.LockByKind(ctx, tx, k, id)
		if err == nil {
			return ride, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, makeErr(ErrRideNotFound)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Booking, error) {
	b, err := s.br.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	// departure slipped by while nobody pinged: advance on read
	if next, ok := s.m.Next(b.Status, TriggerDepartureElapsed); ok {
		ride, rerr := s.rr.Detail(ctx, b.RideID)
		if rerr == nil {
			if dep := ride.DepartureAt(); !dep.IsZero() && dep.Before(time.Now()) {
				now := time.Now()
				if err := s.br.StartTrip(ctx, b.ID, now); err == nil {
					b.Status = next
					b.TripStartedAt = &now
				}
			}
		}
	}
	return b, nil
}

func (s *service) Ping(ctx context.Context, bookingID, userID int64, req PingReq) (*PingResult, error) {
	b, err := s.br.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return nil, makeErr(ErrBadStatus)
	}
	// first ping binds the driver; afterwards only that driver may ping
	if b.DriverID != nil && *b.DriverID != userID {
		return nil, makeErr(ErrForbidden)
	}

	ride, err := s.rr.Detail(ctx, b.RideID)
	if err != nil {
		return nil, err
	}

	dist := geo.HaversineM(req.Lat, req.Lng, ride.OriginLat, ride.OriginLng)
	prev := b.Status
	next, changed := s.m.NextOnPing(b.Kind, b.Status, dist)

	at := time.Now()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}
	if err := s.br.UpdatePing(ctx, b.ID, userID, req.Lat, req.Lng, at, next); err != nil {
		return nil, err
	}

	b.Status = next
	b.LastLat, b.LastLng, b.LastLocationAt = &req.Lat, &req.Lng, &at
	if b.DriverID == nil {
		b.DriverID = &userID
	}

	if changed && next == model.BookingDiPenjemputan && s.n != nil {
		s.n.NotifyUser(ctx, b.UserID, "Driver tiba", "Driver sudah di titik penjemputan",
			map[string]string{"booking_number": b.BookingNumber})
	}

	return &PingResult{Booking: b, DistanceM: dist, StatusChanged: changed, PreviousStatus: prev}, nil
}

func (s *service) UpdateStatus(ctx context.Context, bookingID, userID int64, status model.BookingStatus) (*model.Booking, error) {
	if !model.AllBookingStatuses[status] {
		return nil, makeErr(ErrBadInput)
	}
	b, err := s.br.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.UserID != userID && (b.DriverID == nil || *b.DriverID != userID) {
		return nil, makeErr(ErrForbidden)
	}
	if b.Status == status {
		return b, nil
	}
	// manual moves still have to follow an edge of the table
	if !s.m.CanMove(b.Status, status) {
		return nil, makeErr(ErrBadStatus)
	}
	if err := s.br.SetStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

func (s *service) Cancel(ctx context.Context, bookingID, userID int64, reason string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.br.GetForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if b.UserID != userID && (b.DriverID == nil || *b.DriverID != userID) {
		return makeErr(ErrForbidden)
	}
	if _, ok := s.m.Next(b.Status, TriggerCancel); !ok {
		// terminal states have no cancel edge
		return makeErr(ErrBadStatus)
	}

	if err = s.br.Cancel(ctx, tx, b.ID, reason); err != nil {
		return err
	}
	// capacity goes back but the ride is not revived; only the
	// reschedule path reactivates an inactive ride
	if err = s.rr.Release(ctx, tx, b.RideID, b.Seats, b.JumlahBagasi, false); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) CancelExpired(ctx context.Context, bookingID int64, reason string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.br.GetForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if b.Status != model.BookingPending {
		// already paid or moved on; expiry is a no-op
		return tx.Commit()
	}

	if err = s.br.Cancel(ctx, tx, b.ID, reason); err != nil {
		return err
	}
	if err = s.rr.Release(ctx, tx, b.RideID, b.Seats, b.JumlahBagasi, false); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) My(ctx context.Context, userID int64) ([]model.Booking, error) {
	return s.br.ListByUser(ctx, userID)
}
