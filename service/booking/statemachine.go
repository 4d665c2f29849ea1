// service/booking/statemachine.go
package bookingsvc

import "nebeng/model"

// Trigger is what causes a booking status transition. Explicit triggers
// come from driver/customer actions, the rest are derived from location
// pings or elapsed departure time.
type Trigger string

const (
	TriggerPayment          Trigger = "payment"
	TriggerConfirm          Trigger = "confirm"
	TriggerDriverStart      Trigger = "driver_start"
	TriggerDriverArrive     Trigger = "driver_arrive"
	TriggerDriverDepart     Trigger = "driver_depart"
	TriggerDriverComplete   Trigger = "driver_complete"
	TriggerDepartureElapsed Trigger = "departure_elapsed"
	TriggerCancel           Trigger = "cancel"
)

const (
	// PickupRadiusM: a ping at most this far from the pickup point
	// counts as arrived.
	PickupRadiusM = 10.0
	// TripStartDistanceM: a ping farther than this from pickup starts
	// the trip for kinds that opt into the distance trigger.
	TripStartDistanceM = 100.0
)

// transitions is the single explicit table every ride kind shares. The
// kind-specific distance trigger lives in MachineConfig, not here.
var transitions = map[model.BookingStatus]map[Trigger]model.BookingStatus{
	model.BookingPending: {
		TriggerPayment:          model.BookingPaid,
		TriggerConfirm:          model.BookingConfirmed,
		TriggerDepartureElapsed: model.BookingMenujuPenjemputan,
		TriggerCancel:           model.BookingCancelled,
	},
	model.BookingPaid: {
		TriggerConfirm:          model.BookingConfirmed,
		TriggerDriverStart:      model.BookingMenujuPenjemputan,
		TriggerDepartureElapsed: model.BookingMenujuPenjemputan,
		TriggerCancel:           model.BookingCancelled,
	},
	model.BookingConfirmed: {
		TriggerDriverStart:      model.BookingMenujuPenjemputan,
		TriggerDepartureElapsed: model.BookingMenujuPenjemputan,
		TriggerCancel:           model.BookingCancelled,
	},
	model.BookingMenunggu: {
		TriggerDriverDepart: model.BookingPerjalanan,
		TriggerCancel:       model.BookingCancelled,
	},
	model.BookingMenujuPenjemputan: {
		TriggerDriverArrive: model.BookingDiPenjemputan,
		TriggerCancel:       model.BookingCancelled,
	},
	model.BookingDiPenjemputan: {
		TriggerDriverDepart: model.BookingMenujuTujuan,
		TriggerCancel:       model.BookingCancelled,
	},
	model.BookingPerjalanan: {
		TriggerDriverComplete: model.BookingSampaiTujuan,
		TriggerCancel:         model.BookingCancelled,
	},
	model.BookingMenujuTujuan: {
		TriggerDriverComplete: model.BookingSampaiTujuan,
		TriggerCancel:         model.BookingCancelled,
	},
}

// MachineConfig holds the per-kind knobs. Only barang historically had
// DistanceStartsTrip; whether that is a bug or a product decision is
// still open, so every kind states it explicitly.
type MachineConfig struct {
	DistanceStartsTrip bool
}

type Machine struct {
	perKind map[model.RideKind]MachineConfig
}

func NewMachine(goodsTripOnDistance bool) *Machine {
	return &Machine{perKind: map[model.RideKind]MachineConfig{
		model.KindMotor:  {DistanceStartsTrip: false},
		model.KindMobil:  {DistanceStartsTrip: false},
		model.KindBarang: {DistanceStartsTrip: goodsTripOnDistance},
		model.KindTitip:  {DistanceStartsTrip: false},
	}}
}

// Next resolves an explicit trigger. ok is false when the table has no
// edge for (cur, t).
func (m *Machine) Next(cur model.BookingStatus, t Trigger) (model.BookingStatus, bool) {
	edges, ok := transitions[cur]
	if !ok {
		return cur, false
	}
	next, ok := edges[t]
	if !ok {
		return cur, false
	}
	return next, ok
}

// CanMove reports whether some trigger leads cur to next. The explicit
// status-update endpoint uses it so manual moves stay inside the table.
func (m *Machine) CanMove(cur, next model.BookingStatus) bool {
	for _, to := range transitions[cur] {
		if to == next {
			return true
		}
	}
	return false
}

// NextOnPing resolves the implicit transitions a location ping causes,
// given the ping's haversine distance to the ride's pickup point.
func (m *Machine) NextOnPing(kind model.RideKind, cur model.BookingStatus, distM float64) (model.BookingStatus, bool) {
	switch cur {
	case model.BookingPaid, model.BookingConfirmed:
		// any ping while paid/confirmed means the driver set off
		return m.Next(cur, TriggerDriverStart)
	case model.BookingMenujuPenjemputan:
		if distM <= PickupRadiusM {
			return m.Next(cur, TriggerDriverArrive)
		}
	case model.BookingMenunggu, model.BookingPending:
		// pending has no explicit depart edge; the distance trigger is
		// the one implicit shortcut the knob opts a kind into
		if m.cfg(kind).DistanceStartsTrip && distM > TripStartDistanceM {
			return model.BookingPerjalanan, true
		}
	}
	return cur, false
}

func (m *Machine) cfg(kind model.RideKind) MachineConfig {
	return m.perKind[kind]
}
