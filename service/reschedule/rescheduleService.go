package reschedulesvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	bookingrepo "nebeng/repository/booking"
	reschedulerepo "nebeng/repository/reschedule"
	riderepo "nebeng/repository/ride"
	xenditrepo "nebeng/repository/xendit"

	"nebeng/model"
)

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrRideNotFound ErrCode = "RIDE_NOT_FOUND"
	ErrSameRide     ErrCode = "SAME_RIDE"
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

func makeErr(c ErrCode) error      { return codedError{code: c} }
func noCapacity(avail int64) error { return codedError{code: ErrNoCapacity, avail: avail} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

func Available(err error) int64 {
	var ce interface{ Available() int64 }
	if errors.As(err, &ce) {
		return ce.Available()
	}
	return 0
}

// dto

type Requested struct {
	Request     *model.RescheduleRequest
	PaymentLink string
}

type Confirmed struct {
	Request *model.RescheduleRequest
	OldRide *model.Ride
	NewRide *model.Ride
	// AlreadyApproved marks an idempotent re-confirmation (webhook
	// redelivery); no capacity moved this time around.
	AlreadyApproved bool
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string)
}

type Service interface {
	Request(ctx context.Context, userID, bookingID int64, newKind model.RideKind, newRideID int64) (*Requested, error)

	// Confirm is the atomic unit: one transaction locks the request,
	// the booking and both rides, swaps the capacity and repoints the
	// booking. Re-confirming an approved request is a no-op.
	Confirm(ctx context.Context, requestID int64, paymentTxnID string, passengers []model.BookingPassenger) (*Confirmed, error)

	Reject(ctx context.Context, requestID int64) error
	Get(ctx context.Context, requestID int64) (*model.RescheduleRequest, error)
}

type service struct {
	db *sql.DB
	rq reschedulerepo.Repo
	br bookingrepo.Repo
	rr riderepo.Repo
	x  xenditrepo.Repo
	n  Notifier
}

func New(db *sql.DB, rq reschedulerepo.Repo, br bookingrepo.Repo, rr riderepo.Repo, x xenditrepo.Repo, n Notifier) Service {
	return &service{db: db, rq: rq, br: br, rr: rr, x: x, n: n}
}

// priceUnits: seats pay per seat, cargo kinds pay per bagasi unit.
func priceUnits(b *model.Booking) int64 {
	if b.Kind.SeatBased() {
		return b.Seats
	}
	return b.JumlahBagasi
}

// targetUnits renormalizes a booking's units for the ride it is moving
// onto, the same way the creation path does. A reschedule crossing the
// seat/cargo family boundary must not carry the old family's counters:
// seat kinds need at least one seat, cargo kinds book no seats at all.
func targetUnits(target *model.Ride, seats, cargo int64) (int64, int64) {
	if target.Kind.SeatBased() {
		if seats <= 0 {
			seats = 1
		}
	} else {
		seats = 0
	}
	if cargo <= 0 && target.JumlahBagasi > 0 {
		cargo = 1
	}
	if cargo < 0 {
		cargo = 0
	}
	return seats, cargo
}

// chargeUnits is the quantity the target ride bills for.
func chargeUnits(target *model.Ride, seats, cargo int64) int64 {
	if target.Kind.SeatBased() {
		return seats
	}
	return cargo
}

// availableUnits is the governing counter of a ride's capacity.
func availableUnits(r *model.Ride) int64 {
	if r.Kind.SeatBased() {
		return r.AvailableSeats
	}
	return r.JumlahBagasi
}

// Request creates the pending request and quotes the price difference.
// No capacity moves here, so the rides are read without locks; Confirm
// re-validates everything under row locks.
func (s *service) Request(ctx context.Context, userID, bookingID int64, newKind model.RideKind, newRideID int64) (*Requested, error) {
	if !newKind.Valid() || newRideID <= 0 {
		return nil, makeErr(ErrBadInput)
	}

	b, err := s.br.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, makeErr(ErrForbidden)
	}
	if b.Status.Terminal() {
		return nil, makeErr(ErrBadStatus)
	}
	if b.Kind == newKind && b.RideID == newRideID {
		// moving a booking onto the ride it is already on is disallowed
		return nil, makeErr(ErrSameRide)
	}

	target, err := s.rr.Detail(ctx, newRideID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrRideNotFound)
		}
		return nil, err
	}
	if target.Kind != newKind {
		return nil, makeErr(ErrRideNotFound)
	}
	if target.Status == model.RideInactive {
		return nil, noCapacity(availableUnits(target))
	}

	oldRide, err := s.rr.Detail(ctx, b.RideID)
	if err != nil {
		return nil, err
	}

	newSeats, newCargo := targetUnits(target, b.Seats, b.JumlahBagasi)
	priceBefore := oldRide.Price * float64(priceUnits(b))
	priceAfter := target.Price * float64(chargeUnits(target, newSeats, newCargo))
	diff := priceAfter - priceBefore

	status := model.ReschedulePending
	if diff > 0 {
		status = model.RescheduleAwaitingPayment
	}

	rr := &model.RescheduleRequest{
		BookingID:   b.ID,
		OldKind:     b.Kind,
		OldRideID:   b.RideID,
		NewKind:     newKind,
		NewRideID:   newRideID,
		SeatsBefore: b.Seats,
		PriceBefore: priceBefore,
		PriceAfter:  priceAfter,
		PriceDiff:   diff,
		Status:      status,
	}
	if err := s.rq.Insert(ctx, rr); err != nil {
		return nil, err
	}

	out := &Requested{Request: rr}
	if diff > 0 {
		inv, ierr := s.x.CreateInvoice(xenditrepo.CreateInvoiceReq{
			ExternalID:  fmt.Sprintf("RESCHEDULE-%d", rr.ID),
			Amount:      diff,
			Description: "Nebeng reschedule " + b.BookingNumber,
			ExpirySec:   int((24 * time.Hour).Seconds()),
		})
		if ierr == nil {
			_ = s.rq.SetInvoice(ctx, rr.ID, inv.InvoiceID, inv.InvoiceURL)
			rr.XenditInvoiceID = &inv.InvoiceID
			rr.PaymentLink = &inv.InvoiceURL
			out.PaymentLink = inv.InvoiceURL
		}
	}
	return out, nil
}

// rideRef orders locks. All reschedule transactions acquire ride locks
// in (kind rank, id) order so two concurrent reschedules touching the
// same pair in opposite directions cannot deadlock.
type rideRef struct {
	kind model.RideKind
	id   int64
}

var kindRank = map[model.RideKind]int{
	model.KindMotor:  0,
	model.KindMobil:  1,
	model.KindBarang: 2,
	model.KindTitip:  3,
}

func lockOrder(a, b rideRef) []rideRef {
	refs := []rideRef{a, b}
	sort.Slice(refs, func(i, j int) bool {
		if kindRank[refs[i].kind] != kindRank[refs[j].kind] {
			return kindRank[refs[i].kind] < kindRank[refs[j].kind]
		}
		return refs[i].id < refs[j].id
	})
	return refs
}

// shortCircuit resolves a confirm against the request's current status.
// An approved request is a finished no-op (webhook redelivery), a
// rejected one is a conflict; only pending/awaiting_payment proceed.
func shortCircuit(rr *model.RescheduleRequest) (*Confirmed, error) {
	switch rr.Status {
	case model.RescheduleApproved:
		return &Confirmed{Request: rr, AlreadyApproved: true}, nil
	case model.RescheduleRejected:
		return nil, makeErr(ErrBadStatus)
	}
	return nil, nil
}

func (s *service) Confirm(ctx context.Context, requestID int64, paymentTxnID string, passengers []model.BookingPassenger) (out *Confirmed, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rr, err := s.rq.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if done, serr := shortCircuit(rr); done != nil || serr != nil {
		if serr != nil {
			err = serr
			return nil, err
		}
		_ = tx.Rollback()
		return done, nil
	}

	b, err := s.br.GetForUpdate(ctx, tx, rr.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status.Terminal() {
		return nil, makeErr(ErrBadStatus)
	}

	seatCount := b.Seats
	if len(passengers) > 0 {
		seatCount = int64(len(passengers))
	}

	oldRef := rideRef{kind: rr.OldKind, id: rr.OldRideID}
	newRef := rideRef{kind: rr.NewKind, id: rr.NewRideID}
	sameRide := oldRef == newRef

	locked := map[rideRef]*model.Ride{}
	for _, ref := range lockOrder(oldRef, newRef) {
		if _, done := locked[ref]; done {
			continue
		}
		ride, lerr := s.rr.LockByKind(ctx, tx, ref.kind, ref.id)
		if lerr != nil {
			if errors.Is(lerr, sql.ErrNoRows) {
				err = makeErr(ErrRideNotFound)
				return nil, err
			}
			err = lerr
			return nil, err
		}
		locked[ref] = ride
	}
	oldRide, newRide := locked[oldRef], locked[newRef]

	// the units the booking will hold on the target, renormalized for
	// the target's family; a mobil -> barang move books bagasi only,
	// a barang -> mobil move books at least one seat
	newSeats, newCargo := targetUnits(newRide, seatCount, b.JumlahBagasi)

	if sameRide {
		// net only the seat delta, never release-then-reserve, or a
		// concurrent booking could grab the released seats in between
		delta := newSeats - b.Seats
		switch {
		case delta > 0:
			if oldRide.Status == model.RideInactive || oldRide.AvailableSeats < delta {
				err = noCapacity(oldRide.AvailableSeats)
				return nil, err
			}
			if err = s.rr.Reserve(ctx, tx, oldRide.ID, delta, 0); err != nil {
				if errors.Is(err, riderepo.ErrInsufficient) {
					err = noCapacity(oldRide.AvailableSeats)
				}
				return nil, err
			}
		case delta < 0:
			if err = s.rr.Release(ctx, tx, oldRide.ID, -delta, 0, true); err != nil {
				return nil, err
			}
		}
	} else {
		if newRide.Status == model.RideInactive {
			// full or withdrawn by its driver; either way not bookable
			err = noCapacity(availableUnits(newRide))
			return nil, err
		}
		if err = s.rr.Release(ctx, tx, oldRide.ID, b.Seats, b.JumlahBagasi, true); err != nil {
			return nil, err
		}
		if newRide.Kind.SeatBased() && newRide.AvailableSeats < newSeats {
			err = noCapacity(newRide.AvailableSeats)
			return nil, err
		}
		if newCargo > newRide.JumlahBagasi {
			err = noCapacity(newRide.JumlahBagasi)
			return nil, err
		}
		if err = s.rr.Reserve(ctx, tx, newRide.ID, newSeats, newCargo); err != nil {
			if errors.Is(err, riderepo.ErrInsufficient) {
				err = noCapacity(availableUnits(newRide))
			}
			return nil, err
		}
	}

	if err = s.br.Repoint(ctx, tx, b.ID, rr.NewKind, rr.NewRideID, newSeats, newCargo); err != nil {
		return nil, err
	}
	if len(passengers) > 0 {
		if err = s.br.ReplaceManifest(ctx, tx, b.ID, passengers); err != nil {
			return nil, err
		}
	}
	if err = s.rq.MarkApproved(ctx, tx, rr.ID, paymentTxnID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	now := time.Now()
	rr.Status = model.RescheduleApproved
	rr.ProcessedAt = &now
	if paymentTxnID != "" {
		rr.PaymentTxnID = &paymentTxnID
	}

	if s.n != nil {
		s.n.NotifyUser(ctx, b.UserID, "Reschedule disetujui",
			"Booking "+b.BookingNumber+" dipindah ke jadwal baru",
			map[string]string{"booking_number": b.BookingNumber})
	}
	return &Confirmed{Request: rr, OldRide: oldRide, NewRide: newRide}, nil
}

func (s *service) Reject(ctx context.Context, requestID int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rr, err := s.rq.GetForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	switch rr.Status {
	case model.RescheduleApproved:
		return makeErr(ErrBadStatus)
	case model.RescheduleRejected:
		// already terminal, nothing to do
		return tx.Commit()
	}
	if err = s.rq.MarkRejected(ctx, tx, rr.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Get(ctx context.Context, requestID int64) (*model.RescheduleRequest, error) {
	rr, err := s.rq.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return rr, nil
}
