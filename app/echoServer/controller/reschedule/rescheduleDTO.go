package reschedule

type RequestReq struct {
	RideType string `json:"ride_type" validate:"required,ridekind"`
	RideID   int64  `json:"ride_id" validate:"required,gt=0"`
}

type PassengerReq struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type ConfirmReq struct {
	PaymentTxnID string         `json:"payment_txn_id"`
	Passengers   []PassengerReq `json:"passengers" validate:"omitempty,dive"`
}
