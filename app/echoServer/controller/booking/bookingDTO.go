package booking

import "time"

type CreateBookingReq struct {
	RideID       int64  `json:"ride_id" validate:"required,gt=0"`
	RideType     string `json:"ride_type" validate:"omitempty,ridekind"`
	Seats        int64  `json:"seats" validate:"gte=0"`
	JumlahBagasi int64  `json:"jumlah_bagasi" validate:"gte=0"`
}

type LocationReq struct {
	Lat       float64    `json:"lat" validate:"required,latitude"`
	Lng       float64    `json:"lng" validate:"required,longitude"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
}

type UpdateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

type CancelReq struct {
	Reason string `json:"reason" validate:"required"`
}
