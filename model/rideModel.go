// model/ride.go
package model

import "time"

// RideKind is the sum of the four trip products. They used to live in
// four parallel tables; a single rides table carries the kind tag now.
type RideKind string

const (
	KindMotor  RideKind = "motor"  // motorcycle, single pillion seat
	KindMobil  RideKind = "mobil"  // car, multi-seat
	KindBarang RideKind = "barang" // goods transport, cargo only
	KindTitip  RideKind = "titip"  // goods drop-off, cargo only
)

// KindLookupOrder is the resolution precedence used when a booking
// request does not name the ride kind. Titip is checked before barang
// because the two historically shared id ranges.
var KindLookupOrder = []RideKind{KindMotor, KindMobil, KindTitip, KindBarang}

func (k RideKind) Valid() bool {
	switch k {
	case KindMotor, KindMobil, KindBarang, KindTitip:
		return true
	}
	return false
}

// SeatBased reports whether seat capacity governs this kind. Cargo-only
// kinds ignore available_seats entirely.
func (k RideKind) SeatBased() bool { return k == KindMotor || k == KindMobil }

type RideStatus string

const (
	RideActive   RideStatus = "active"
	RideInactive RideStatus = "inactive"
)

type Ride struct {
	ID             int64      `json:"id"`
	Kind           RideKind   `json:"kind"`
	DriverID       int64      `json:"driver_id"`
	OriginName     string     `json:"origin_name"`
	OriginLat      float64    `json:"origin_lat"`
	OriginLng      float64    `json:"origin_lng"`
	DestName       string     `json:"dest_name"`
	DestLat        float64    `json:"dest_lat"`
	DestLng        float64    `json:"dest_lng"`
	DepartureDate  string     `json:"departure_date"` // yyyy-mm-dd
	DepartureTime  string     `json:"departure_time"` // HH:MM
	Price          float64    `json:"price"`
	AvailableSeats int64      `json:"available_seats"`
	JumlahBagasi   int64      `json:"jumlah_bagasi"`
	Status         RideStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DepartureAt combines the stored date and time columns. A zero time is
// returned when either column is malformed.
func (r *Ride) DepartureAt() time.Time {
	t, err := time.Parse("2006-01-02 15:04", r.DepartureDate+" "+r.DepartureTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
