package ride

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"nebeng/app/echoServer/jwtx"
	ridesvc "nebeng/service/ride"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc ridesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/rides (driver only)
func (h *Controller) Create(c echo.Context) error {
	var req ridesvc.CreateReq
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

	m, err := h.Svc.Create(c.Request().Context(), uid, req)
	if err != nil {
		if errors.Is(err, ridesvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "seat rides need seats, cargo rides need bagasi"})
		}
		h.Log.Error("ride create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": "ride created", "ride": m})
}

// GET /v1/rides?kind=motor
func (h *Controller) List(c echo.Context) error {
	rides, err := h.Svc.List(c.Request().Context(), c.QueryParam("kind"))
	if err != nil {
		if errors.Is(err, ridesvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unknown ride kind"})
		}
		h.Log.Error("ride list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok", "rides": rides})
}

// GET /v1/rides/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	m, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ridesvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "ride not found"})
		}
		h.Log.Error("ride detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok", "ride": m})
}

// POST /v1/rides/:id/deactivate (driver only, own rides)
func (h *Controller) Deactivate(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "unauthorized"})
	}
	if err := h.Svc.Deactivate(c.Request().Context(), id, uid); err != nil {
		switch {
		case errors.Is(err, ridesvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "ride not found"})
		case errors.Is(err, ridesvc.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "not your ride"})
		default:
			h.Log.Error("ride deactivate", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ride deactivated"})
}
