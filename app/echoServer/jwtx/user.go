// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id placed in the context by
// the auth middleware.
func UserID(c echo.Context) (int64, error) {
	id, ok := c.Get("user_id").(int64)
	if !ok || id <= 0 {
		return 0, errors.New("no authenticated user in context")
	}
	return id, nil
}

// Role returns the authenticated user's role claim.
func Role(c echo.Context) string {
	r, _ := c.Get("user_role").(string)
	return r
}
