package paymentsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	bookingrepo "nebeng/repository/booking"
	reschedulerepo "nebeng/repository/reschedule"
	xenditrepo "nebeng/repository/xendit"

	"nebeng/model"
	bookingsvc "nebeng/service/booking"
	reschedulesvc "nebeng/service/reschedule"
)

var ErrBadSignature = errors.New("bad callback signature")

type Service interface {
	HandleXendit(ctx context.Context, sigHeader string, raw []byte) error
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string)
}

type service struct {
	xv    xenditrepo.Repo
	bRepo bookingrepo.Repo
	rRepo reschedulerepo.Repo
	bSvc  bookingsvc.Service
	rSvc  reschedulesvc.Service
	n     Notifier
	log   *slog.Logger
}

func New(xv xenditrepo.Repo, bRepo bookingrepo.Repo, rRepo reschedulerepo.Repo,
	bSvc bookingsvc.Service, rSvc reschedulesvc.Service, n Notifier, log *slog.Logger,
) Service {
	return &service{xv: xv, bRepo: bRepo, rRepo: rRepo, bSvc: bSvc, rSvc: rSvc, n: n, log: log}
}

type xInvoiceEvent struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	ExternalID string `json:"external_id"`
}

func (s *service) HandleXendit(ctx context.Context, sigHeader string, raw []byte) error {
	if err := s.xv.VerifyCallbackToken(sigHeader); err != nil {
		return ErrBadSignature
	}

	var ev xInvoiceEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	if ev.ID == "" || ev.Status == "" {
		return errors.New("missing invoice fields")
	}
	switch ev.Status {
	case "PAID":
		return s.onPaid(ctx, ev)
	case "EXPIRED":
		return s.onExpired(ctx, ev)
	default:
		return nil
	}
}

// onPaid resolves the invoice to a booking (external id = booking
// number) or a reschedule request. Both paths tolerate webhook
// redelivery: a booking already past pending and an already-approved
// request are no-ops.
func (s *service) onPaid(ctx context.Context, ev xInvoiceEvent) error {
	if b, err := s.bRepo.FindByNumber(ctx, ev.ExternalID); err == nil {
		moved, err := s.bRepo.MarkPaid(ctx, b.ID)
		if err != nil {
			return err
		}
		if moved && s.n != nil {
			s.n.NotifyUser(ctx, b.UserID, "Pembayaran diterima",
				"Booking "+b.BookingNumber+" sudah dibayar",
				map[string]string{"booking_number": b.BookingNumber})
		}
		return nil
	}

	rr, err := s.rRepo.FindByInvoiceID(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("invoice not mapped to booking nor reschedule: %w", err)
	}
	_, err = s.rSvc.Confirm(ctx, rr.ID, ev.ID, nil)
	if reschedulesvc.Code(err) == reschedulesvc.ErrNoCapacity {
		// paid but the target filled up meanwhile; leave the request
		// for an admin to resolve, do not fail the webhook forever
		s.log.Error("reschedule confirm after payment failed", "request_id", rr.ID, "err", err)
		return nil
	}
	return err
}

func (s *service) onExpired(ctx context.Context, ev xInvoiceEvent) error {
	b, err := s.bRepo.FindByNumber(ctx, ev.ExternalID)
	if err != nil {
		// expiries for reschedule invoices just lapse
		return nil
	}
	if b.Status != model.BookingPending {
		return nil
	}
	if err := s.bSvc.CancelExpired(ctx, b.ID, "payment expired"); err != nil {
		return err
	}
	return nil
}
