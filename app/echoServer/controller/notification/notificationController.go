package notification

import (
	"log/slog"
	"net/http"

	"nebeng/app/echoServer/jwtx"
	notificationsvc "nebeng/service/notification"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type TokenReq struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=android ios web"`
}

type Controller struct {
	Svc notificationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/notifications/token
func (h *Controller) RegisterToken(c echo.Context) error {
	var req TokenReq
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
	if err := h.Svc.RegisterToken(c.Request().Context(), uid, req.Token, req.Platform); err != nil {
		h.Log.Error("register device token", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "token registered"})
}
