package payment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	paymentsvc "nebeng/service/payment"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /v1/payment/xendit
// Xendit invoice callback. The x-callback-token header must match the
// configured verification token.
func (h *Controller) Xendit(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "unreadable body"})
	}
	sig := c.Request().Header.Get("X-Callback-Token")

	if err := h.Svc.HandleXendit(c.Request().Context(), sig, raw); err != nil {
		if errors.Is(err, paymentsvc.ErrBadSignature) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "bad callback token"})
		}
		h.Log.Error("xendit webhook", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "ok"})
}
