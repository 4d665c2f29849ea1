package reschedule

import (
	"log/slog"
	"net/http"
	"strconv"

	"nebeng/app/echoServer/jwtx"
	"nebeng/model"
	rs "nebeng/service/reschedule"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/bookings/:id/reschedule
func (h *Controller) Request(c echo.Context) error {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req RequestReq
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

	out, err := h.Svc.Request(c.Request().Context(), uid, bookingID, model.RideKind(req.RideType), req.RideID)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "booking not found"})
		case rs.ErrRideNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "target ride not found"})
		case rs.ErrSameRide:
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "booking is already on that ride"})
		case rs.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
		case rs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "booking already finished"})
		default:
			h.Log.Error("reschedule request", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"message":      "reschedule requested",
		"request":      out.Request,
		"payment_link": out.PaymentLink,
	})
}

// POST /v1/reschedule/:id/confirm
func (h *Controller) Confirm(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req ConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": "validation error"})
	}

	var passengers []model.BookingPassenger
	for _, p := range req.Passengers {
		passengers = append(passengers, model.BookingPassenger{Name: p.Name, Phone: p.Phone})
	}

	out, err := h.Svc.Confirm(c.Request().Context(), id, req.PaymentTxnID, passengers)
	if err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "request not found"})
		case rs.ErrRideNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "ride not found"})
		case rs.ErrNoCapacity:
			return c.JSON(http.StatusConflict, echo.Map{
				"success":   false,
				"message":   "insufficient capacity on target ride",
				"available": rs.Available(err),
			})
		case rs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "request already rejected or booking finished"})
		default:
			h.Log.Error("reschedule confirm", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}

	resp := echo.Map{
		"success": true,
		"message": "reschedule approved",
		"request": out.Request,
	}
	if out.AlreadyApproved {
		resp["message"] = "already approved"
	} else {
		resp["old_ride"] = out.OldRide
		resp["new_ride"] = out.NewRide
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /v1/reschedule/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	if err := h.Svc.Reject(c.Request().Context(), id); err != nil {
		switch rs.Code(err) {
		case rs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "request not found"})
		case rs.ErrBadStatus:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "request already approved"})
		default:
			h.Log.Error("reschedule reject", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "reschedule rejected"})
}

// GET /v1/reschedule/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	rr, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if rs.Code(err) == rs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "request not found"})
		}
		h.Log.Error("reschedule detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok", "request": rr})
}
