package ridesvc_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"nebeng/model"
	ridesvc "nebeng/service/ride"
)

type repoMock struct {
	createFn     func(ctx context.Context, r *model.Ride) error
	listFn       func(ctx context.Context, kind string) ([]model.Ride, error)
	detailFn     func(ctx context.Context, id int64) (*model.Ride, error)
	deactivateFn func(ctx context.Context, id, driverID int64) (bool, error)
}

func (m *repoMock) Create(ctx context.Context, r *model.Ride) error { return m.createFn(ctx, r) }
func (m *repoMock) List(ctx context.Context, kind string) ([]model.Ride, error) {
	return m.listFn(ctx, kind)
}
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Ride, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) Deactivate(ctx context.Context, id, driverID int64) (bool, error) {
	return m.deactivateFn(ctx, id, driverID)
}
func (m *repoMock) LockByKind(ctx context.Context, tx *sql.Tx, kind model.RideKind, id int64) (*model.Ride, error) {
	return nil, sql.ErrNoRows
}
func (m *repoMock) Reserve(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64) error {
	return nil
}
func (m *repoMock) Release(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64, reactivate bool) error {
	return nil
}

func validReq(kind model.RideKind) ridesvc.CreateReq {
	req := ridesvc.CreateReq{
		Kind:          kind,
		OriginName:    "Bandung",
		OriginLat:     -6.9,
		OriginLng:     107.6,
		DestName:      "Jakarta",
		DestLat:       -6.2,
		DestLng:       106.8,
		DepartureDate: "2026-09-01",
		DepartureTime: "07:30",
		Price:         55000,
	}
	if kind.SeatBased() {
		req.AvailableSeats = 4
	} else {
		req.JumlahBagasi = 10
	}
	return req
}

func TestCreate_CapacityRules(t *testing.T) {
	s := ridesvc.New(&repoMock{})

	// seat ride without seats
	bad := validReq(model.KindMotor)
	bad.AvailableSeats = 0
	if _, err := s.Create(context.Background(), 1, bad); !errors.Is(err, ridesvc.ErrBadInput) {
		t.Fatalf("got %v; want ErrBadInput", err)
	}

	// cargo ride without bagasi
	bad = validReq(model.KindBarang)
	bad.JumlahBagasi = 0
	if _, err := s.Create(context.Background(), 1, bad); !errors.Is(err, ridesvc.ErrBadInput) {
		t.Fatalf("got %v; want ErrBadInput", err)
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, r *model.Ride) error {
			r.ID = 17
			return nil
		},
	}
	s := ridesvc.New(m)

	ride, err := s.Create(context.Background(), 5, validReq(model.KindMobil))
	if err != nil {
		t.Fatal(err)
	}
	if ride.ID != 17 || ride.DriverID != 5 || ride.Status != model.RideActive {
		t.Fatalf("unexpected ride %+v", ride)
	}
}

func TestList_KindFilter(t *testing.T) {
	m := &repoMock{
		listFn: func(ctx context.Context, kind string) ([]model.Ride, error) { return nil, nil },
	}
	s := ridesvc.New(m)

	if _, err := s.List(context.Background(), "becak"); !errors.Is(err, ridesvc.ErrBadInput) {
		t.Fatalf("got %v; want ErrBadInput for unknown kind", err)
	}
	if _, err := s.List(context.Background(), "titip"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
}

func TestDeactivate_NotFoundVsForbidden(t *testing.T) {
	m := &repoMock{
		deactivateFn: func(ctx context.Context, id, driverID int64) (bool, error) { return false, nil },
		detailFn: func(ctx context.Context, id int64) (*model.Ride, error) {
			if id == 404 {
				return nil, sql.ErrNoRows
			}
			return &model.Ride{ID: id, DriverID: 99}, nil
		},
	}
	s := ridesvc.New(m)

	if err := s.Deactivate(context.Background(), 404, 1); !errors.Is(err, ridesvc.ErrNotFound) {
		t.Fatalf("got %v; want ErrNotFound", err)
	}
	if err := s.Deactivate(context.Background(), 7, 1); !errors.Is(err, ridesvc.ErrForbidden) {
		t.Fatalf("got %v; want ErrForbidden", err)
	}
}
