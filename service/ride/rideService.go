package ridesvc

import (
	"context"
	"database/sql"
	"errors"

	"nebeng/model"
	riderepo "nebeng/repository/ride"
)

var (
	ErrBadInput  = errors.New("bad input")
	ErrNotFound  = errors.New("ride not found")
	ErrForbidden = errors.New("not the ride owner")
)

type CreateReq struct {
	Kind           model.RideKind `json:"kind" validate:"required,ridekind"`
	OriginName     string         `json:"origin_name" validate:"required"`
	OriginLat      float64        `json:"origin_lat" validate:"required,latitude"`
	OriginLng      float64        `json:"origin_lng" validate:"required,longitude"`
	DestName       string         `json:"dest_name" validate:"required"`
	DestLat        float64        `json:"dest_lat" validate:"required,latitude"`
	DestLng        float64        `json:"dest_lng" validate:"required,longitude"`
	DepartureDate  string         `json:"departure_date" validate:"required,datetime=2006-01-02"`
	DepartureTime  string         `json:"departure_time" validate:"required,datetime=15:04"`
	Price          float64        `json:"price" validate:"required,gt=0"`
	AvailableSeats int64          `json:"available_seats" validate:"gte=0"`
	JumlahBagasi   int64          `json:"jumlah_bagasi" validate:"gte=0"`
}

type Service interface {
	Create(ctx context.Context, driverID int64, req CreateReq) (*model.Ride, error)
	List(ctx context.Context, kind string) ([]model.Ride, error)
	Detail(ctx context.Context, id int64) (*model.Ride, error)
	Deactivate(ctx context.Context, id, driverID int64) error
}

type service struct{ r riderepo.Repo }

func New(r riderepo.Repo) Service { return &service{r} }

func (s *service) Create(ctx context.Context, driverID int64, req CreateReq) (*model.Ride, error) {
	if !req.Kind.Valid() {
		return nil, ErrBadInput
	}
	// a seat-based ride needs seats, a cargo ride needs bagasi space
	if req.Kind.SeatBased() && req.AvailableSeats <= 0 {
		return nil, ErrBadInput
	}
	if !req.Kind.SeatBased() {
		if req.JumlahBagasi <= 0 {
			return nil, ErrBadInput
		}
		// cargo kinds never carry passengers; keep the counter at zero
		// so the reservation guard cannot bind on it
		req.AvailableSeats = 0
	}

	m := &model.Ride{
		Kind:           req.Kind,
		DriverID:       driverID,
		OriginName:     req.OriginName,
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		DestName:       req.DestName,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		DepartureDate:  req.DepartureDate,
		DepartureTime:  req.DepartureTime,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
		JumlahBagasi:   req.JumlahBagasi,
		Status:         model.RideActive,
	}
	if err := s.r.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) List(ctx context.Context, kind string) ([]model.Ride, error) {
	if kind != "" && !model.RideKind(kind).Valid() {
		return nil, ErrBadInput
	}
	return s.r.List(ctx, kind)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Ride, error) {
	m, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *service) Deactivate(ctx context.Context, id, driverID int64) error {
	ok, err := s.r.Deactivate(ctx, id, driverID)
	if err != nil {
		return err
	}
	if !ok {
		// either the ride does not exist or it belongs to someone else
		if _, derr := s.r.Detail(ctx, id); derr != nil {
			return ErrNotFound
		}
		return ErrForbidden
	}
	return nil
}
