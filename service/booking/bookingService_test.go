package bookingsvc

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"nebeng/model"
)

type bookingRepoMock struct {
	getByIDFn    func(ctx context.Context, id int64) (*model.Booking, error)
	updatePingFn func(ctx context.Context, id, driverID int64, lat, lng float64, at time.Time, status model.BookingStatus) error
	setStatusFn  func(ctx context.Context, id int64, status model.BookingStatus) error
	startTripFn  func(ctx context.Context, id int64, at time.Time) error
	listFn       func(ctx context.Context, userID int64) ([]model.Booking, error)
}

func (m *bookingRepoMock) Insert(ctx context.Context, tx *sql.Tx, b *model.Booking) error { return nil }
func (m *bookingRepoMock) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	return m.getByIDFn(ctx, id)
}
func (m *bookingRepoMock) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error) {
	return nil, sql.ErrNoRows
}
func (m *bookingRepoMock) FindByNumber(ctx context.Context, number string) (*model.Booking, error) {
	return nil, sql.ErrNoRows
}
func (m *bookingRepoMock) ListByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	if m.listFn == nil {
		return nil, nil
	}
	return m.listFn(ctx, userID)
}
func (m *bookingRepoMock) SetStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, id, status)
}
func (m *bookingRepoMock) MarkPaid(ctx context.Context, id int64) (bool, error) { return false, nil }
func (m *bookingRepoMock) Cancel(ctx context.Context, tx *sql.Tx, id int64, reason string) error {
	return nil
}
func (m *bookingRepoMock) StartTrip(ctx context.Context, id int64, at time.Time) error {
	if m.startTripFn == nil {
		return nil
	}
	return m.startTripFn(ctx, id, at)
}
func (m *bookingRepoMock) UpdatePing(ctx context.Context, id int64, driverID int64, lat, lng float64, at time.Time, status model.BookingStatus) error {
	if m.updatePingFn == nil {
		return nil
	}
	return m.updatePingFn(ctx, id, driverID, lat, lng, at, status)
}
func (m *bookingRepoMock) Repoint(ctx context.Context, tx *sql.Tx, id int64, kind model.RideKind, rideID, seats, cargo int64) error {
	return nil
}
func (m *bookingRepoMock) ReplaceManifest(ctx context.Context, tx *sql.Tx, bookingID int64, ps []model.BookingPassenger) error {
	return nil
}
func (m *bookingRepoMock) Manifest(ctx context.Context, bookingID int64) ([]model.BookingPassenger, error) {
	return nil, nil
}
func (m *bookingRepoMock) SetInvoice(ctx context.Context, id int64, invoiceID, link string) error {
	return nil
}

type rideRepoMock struct {
	detailFn func(ctx context.Context, id int64) (*model.Ride, error)
}

func (m *rideRepoMock) Create(ctx context.Context, r *model.Ride) error { return nil }
func (m *rideRepoMock) List(ctx context.Context, kind string) ([]model.Ride, error) {
	return nil, nil
}
func (m *rideRepoMock) Detail(ctx context.Context, id int64) (*model.Ride, error) {
	return m.detailFn(ctx, id)
}
func (m *rideRepoMock) Deactivate(ctx context.Context, id, driverID int64) (bool, error) {
	return false, nil
}
func (m *rideRepoMock) LockByKind(ctx context.Context, tx *sql.Tx, kind model.RideKind, id int64) (*model.Ride, error) {
	return nil, sql.ErrNoRows
}
func (m *rideRepoMock) Reserve(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64) error {
	return nil
}
func (m *rideRepoMock) Release(ctx context.Context, tx *sql.Tx, rideID, seats, cargo int64, reactivate bool) error {
	return nil
}

type notifierMock struct {
	calls []string
}

func (n *notifierMock) NotifyUser(ctx context.Context, userID int64, title, body string, data map[string]string) {
	n.calls = append(n.calls, title)
}

// --- pure helpers ---

func TestNormalizeUnits(t *testing.T) {
	motor := &model.Ride{Kind: model.KindMotor, JumlahBagasi: 0}
	seats, cargo := normalizeUnits(motor, 0, 0)
	if seats != 1 || cargo != 0 {
		t.Fatalf("motor defaults: got seats=%d cargo=%d; want 1 0", seats, cargo)
	}

	// a seat ride with luggage space picks up one bagasi unit too
	mobil := &model.Ride{Kind: model.KindMobil, JumlahBagasi: 3}
	seats, cargo = normalizeUnits(mobil, 2, 0)
	if seats != 2 || cargo != 1 {
		t.Fatalf("mobil: got seats=%d cargo=%d; want 2 1", seats, cargo)
	}

	// cargo kinds never book seats, and default to one unit
	barang := &model.Ride{Kind: model.KindBarang, JumlahBagasi: 5}
	seats, cargo = normalizeUnits(barang, 4, 0)
	if seats != 0 || cargo != 1 {
		t.Fatalf("barang: got seats=%d cargo=%d; want 0 1", seats, cargo)
	}

	seats, cargo = normalizeUnits(barang, 0, 3)
	if seats != 0 || cargo != 3 {
		t.Fatalf("barang explicit: got seats=%d cargo=%d; want 0 3", seats, cargo)
	}
}

func TestValidateCapacity(t *testing.T) {
	ride := &model.Ride{Kind: model.KindMobil, Status: model.RideActive, AvailableSeats: 2, JumlahBagasi: 1}

	if err := validateCapacity(ride, 2, 1); err != nil {
		t.Fatalf("exact fit rejected: %v", err)
	}

	err := validateCapacity(ride, 3, 0)
	if Code(err) != ErrNoCapacity {
		t.Fatalf("overbook: got %v; want NO_CAPACITY", err)
	}
	if Available(err) != 2 {
		t.Fatalf("overbook availability: got %d; want 2", Available(err))
	}

	err = validateCapacity(ride, 1, 2)
	if Code(err) != ErrNoCapacity || Available(err) != 1 {
		t.Fatalf("bagasi overbook: got %v avail=%d", err, Available(err))
	}

	inactive := &model.Ride{Kind: model.KindBarang, Status: model.RideInactive, JumlahBagasi: 4}
	if Code(validateCapacity(inactive, 0, 1)) != ErrNoCapacity {
		t.Fatal("inactive ride accepted a booking")
	}
}

func TestGenBookingNumber(t *testing.T) {
	now := time.Date(2026, 8, 28, 14, 5, 0, 0, time.UTC)

	re := regexp.MustCompile(`^MTR-202608281405-[0-9a-z]{4}$`)
	got := genBookingNumber(model.KindMotor, now)
	if !re.MatchString(got) {
		t.Fatalf("bad booking number %q", got)
	}

	for kind, prefix := range map[model.RideKind]string{
		model.KindMobil:  "MBL",
		model.KindBarang: "BRG",
		model.KindTitip:  "TTP",
	} {
		if n := genBookingNumber(kind, now); n[:3] != prefix {
			t.Errorf("kind %s: got prefix %q; want %q", kind, n[:3], prefix)
		}
	}
}

// --- ping flow ---

func pingService(br *bookingRepoMock, rr *rideRepoMock, n Notifier) Service {
	return New(nil, br, rr, nil, NewMachine(true), n)
}

func TestPing_ArrivalNotifies(t *testing.T) {
	booking := &model.Booking{
		ID: 7, BookingNumber: "MTR-202608281405-ab12", UserID: 3, RideID: 11,
		Kind: model.KindMotor, Status: model.BookingMenujuPenjemputan,
	}
	ride := &model.Ride{ID: 11, Kind: model.KindMotor, OriginLat: -6.2, OriginLng: 106.8}

	var gotStatus model.BookingStatus
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
		updatePingFn: func(ctx context.Context, id, driverID int64, lat, lng float64, at time.Time, status model.BookingStatus) error {
			gotStatus = status
			return nil
		},
	}
	rr := &rideRepoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Ride, error) { return ride, nil },
	}
	n := &notifierMock{}

	// ping from the pickup point itself
	out, err := pingService(br, rr, n).Ping(context.Background(), 7, 42, PingReq{Lat: -6.2, Lng: 106.8})
	if err != nil {
		t.Fatal(err)
	}
	if !out.StatusChanged || out.Booking.Status != model.BookingDiPenjemputan {
		t.Fatalf("status = %s changed=%v; want arrival", out.Booking.Status, out.StatusChanged)
	}
	if gotStatus != model.BookingDiPenjemputan {
		t.Fatalf("persisted status = %s", gotStatus)
	}
	if out.DistanceM > 0.001 {
		t.Fatalf("distance = %f; want ~0", out.DistanceM)
	}
	if out.Booking.DriverID == nil || *out.Booking.DriverID != 42 {
		t.Fatal("first ping should bind the driver")
	}
	if len(n.calls) != 1 {
		t.Fatalf("notifications = %d; want 1", len(n.calls))
	}
}

func TestPing_WrongDriverForbidden(t *testing.T) {
	bound := int64(42)
	booking := &model.Booking{ID: 7, UserID: 3, RideID: 11, Kind: model.KindMotor,
		Status: model.BookingMenujuPenjemputan, DriverID: &bound}
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
	}
	rr := &rideRepoMock{}

	_, err := pingService(br, rr, nil).Ping(context.Background(), 7, 99, PingReq{Lat: 0, Lng: 0})
	if Code(err) != ErrForbidden {
		t.Fatalf("got %v; want FORBIDDEN", err)
	}
}

func TestPing_CancelledRejected(t *testing.T) {
	booking := &model.Booking{ID: 7, Status: model.BookingCancelled, Kind: model.KindMotor}
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
	}

	_, err := pingService(br, &rideRepoMock{}, nil).Ping(context.Background(), 7, 42, PingReq{})
	if Code(err) != ErrBadStatus {
		t.Fatalf("got %v; want BAD_STATUS", err)
	}
}

func TestPing_NotFound(t *testing.T) {
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return nil, sql.ErrNoRows },
	}
	_, err := pingService(br, &rideRepoMock{}, nil).Ping(context.Background(), 1, 42, PingReq{})
	if Code(err) != ErrNotFound {
		t.Fatalf("got %v; want NOT_FOUND", err)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	s := New(nil, &bookingRepoMock{}, &rideRepoMock{}, nil, NewMachine(true), nil)
	_, err := s.UpdateStatus(context.Background(), 1, 42, "teleported")
	if Code(err) != ErrBadInput {
		t.Fatalf("got %v; want BAD_INPUT", err)
	}
}

func TestUpdateStatus_OwnershipRequired(t *testing.T) {
	driver := int64(42)
	booking := &model.Booking{ID: 1, UserID: 3, DriverID: &driver, Status: model.BookingPaid}
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
	}
	s := New(nil, br, &rideRepoMock{}, nil, NewMachine(true), nil)

	// a stranger cannot move the booking
	_, err := s.UpdateStatus(context.Background(), 1, 99, model.BookingConfirmed)
	if Code(err) != ErrForbidden {
		t.Fatalf("stranger: got %v; want FORBIDDEN", err)
	}

	// the customer and the bound driver both can
	if _, err := s.UpdateStatus(context.Background(), 1, 3, model.BookingConfirmed); err != nil {
		t.Fatalf("owner: %v", err)
	}
	booking.Status = model.BookingPaid
	if _, err := s.UpdateStatus(context.Background(), 1, 42, model.BookingConfirmed); err != nil {
		t.Fatalf("driver: %v", err)
	}
}

func TestUpdateStatus_TableGoverned(t *testing.T) {
	booking := &model.Booking{ID: 1, UserID: 3, Status: model.BookingPending}
	br := &bookingRepoMock{
		getByIDFn: func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
	}
	s := New(nil, br, &rideRepoMock{}, nil, NewMachine(true), nil)

	// skipping straight to the destination leg is not an edge
	_, err := s.UpdateStatus(context.Background(), 1, 3, model.BookingMenujuTujuan)
	if Code(err) != ErrBadStatus {
		t.Fatalf("pending -> menuju_tujuan: got %v; want BAD_STATUS", err)
	}

	// restating the current status is a harmless no-op
	b, err := s.UpdateStatus(context.Background(), 1, 3, model.BookingPending)
	if err != nil || b.Status != model.BookingPending {
		t.Fatalf("no-op: got %v %v", b, err)
	}

	// a real edge goes through
	b, err = s.UpdateStatus(context.Background(), 1, 3, model.BookingConfirmed)
	if err != nil || b.Status != model.BookingConfirmed {
		t.Fatalf("pending -> confirmed: got %v %v", b, err)
	}

	booking.Status = model.BookingCancelled
	if _, err := s.UpdateStatus(context.Background(), 1, 3, model.BookingPaid); Code(err) != ErrBadStatus {
		t.Fatalf("cancelled booking moved: %v", err)
	}
}

func TestGet_AutoAdvanceOnElapsedDeparture(t *testing.T) {
	booking := &model.Booking{ID: 5, RideID: 9, Kind: model.KindMotor, Status: model.BookingPaid}
	ride := &model.Ride{ID: 9, DepartureDate: "2020-01-01", DepartureTime: "08:00"}

	started := false
	br := &bookingRepoMock{
		getByIDFn:   func(ctx context.Context, id int64) (*model.Booking, error) { return booking, nil },
		startTripFn: func(ctx context.Context, id int64, at time.Time) error { started = true; return nil },
	}
	rr := &rideRepoMock{
		detailFn: func(ctx context.Context, id int64) (*model.Ride, error) { return ride, nil },
	}

	b, err := pingService(br, rr, nil).Get(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if !started || b.Status != model.BookingMenujuPenjemputan {
		t.Fatalf("started=%v status=%s; want auto-advance", started, b.Status)
	}
}
