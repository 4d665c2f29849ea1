package booking

import (
	"log/slog"
	"net/http"
	"strconv"

	"nebeng/app/echoServer/jwtx"
	"nebeng/model"
	bs "nebeng/service/booking"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/bookings
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"success": false,
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	out, err := h.Svc.Create(c.Request().Context(), uid, bs.CreateReq{
		RideID:       req.RideID,
		Kind:         model.RideKind(req.RideType),
		Seats:        req.Seats,
		JumlahBagasi: req.JumlahBagasi,
	})
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrRideNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "ride not found"})
		case bs.ErrNoCapacity:
			return c.JSON(http.StatusConflict, echo.Map{
				"success":   false,
				"message":   "insufficient capacity",
				"available": bs.Available(err),
			})
		case bs.ErrBadInput:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "validation error"})
		default:
			h.Log.Error("booking create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"message":      "booking created",
		"booking":      out.Booking,
		"payment_link": out.PaymentLink,
	})
}

// GET /v1/bookings/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if bs.Code(err) == bs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "booking not found"})
		}
		h.Log.Error("booking detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok", "booking": b})
}

// POST /v1/bookings/:id/location
func (h *Controller) Location(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req LocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"success": false,
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	out, err := h.Svc.Ping(c.Request().Context(), id, uid, bs.PingReq{
		Lat: req.Lat, Lng: req.Lng, Timestamp: req.Timestamp,
		Accuracy: req.Accuracy, Speed: req.Speed,
	})
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "booking not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "not the assigned driver"})
		case bs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "booking is cancelled"})
		default:
			h.Log.Error("booking location", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":              true,
		"message":              "location recorded",
		"status":               out.Booking.Status,
		"status_changed":       out.StatusChanged,
		"distance_to_pickup_m": out.DistanceM,
		"booking":              out.Booking,
	})
}

// PATCH /v1/bookings/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "validation error"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	b, err := h.Svc.UpdateStatus(c.Request().Context(), id, uid, model.BookingStatus(req.Status))
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "booking not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
		case bs.ErrBadInput:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "unknown status"})
		case bs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "move not allowed from current status"})
		default:
			h.Log.Error("booking status", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "status updated", "booking": b})
}

// POST /v1/bookings/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req CancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "validation error"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}

	if err := h.Svc.Cancel(c.Request().Context(), id, uid, req.Reason); err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "booking not found"})
		case bs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
		case bs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "booking already finished"})
		default:
			h.Log.Error("booking cancel", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "booking cancelled"})
}

// GET /v1/bookings/my
func (h *Controller) My(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}
	rows, err := h.Svc.My(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("booking history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok", "data": rows})
}
