package echoServer

import (
	"net/http"

	"nebeng/app/echoServer/controller/auth"
	"nebeng/app/echoServer/controller/booking"
	"nebeng/app/echoServer/controller/notification"
	"nebeng/app/echoServer/controller/payment"
	"nebeng/app/echoServer/controller/reschedule"
	"nebeng/app/echoServer/controller/ride"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth         *auth.Controller
	Ride         *ride.Controller
	Booking      *booking.Controller
	Reschedule   *reschedule.Controller
	Payment      *payment.Controller
	Notification *notification.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// payment webhook (authenticated by callback token, not JWT)
	pub.POST("/payment/xendit", c.Payment.Xendit)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	// user_id / role extraction from the verified claims
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tokenObj := ctx.Get("user")
			token, ok := tokenObj.(*jwt.Token)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			sub, ok := claims["sub"].(float64)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", int64(sub))
			if role, ok := claims["role"].(string); ok {
				ctx.Set("user_role", role)
			}
			return next(ctx)
		}
	})

	// Rides
	auth.GET("/rides", c.Ride.List)
	auth.GET("/rides/:id", c.Ride.Detail)
	auth.POST("/rides", c.Ride.Create, RequireRole("driver"))
	auth.POST("/rides/:id/deactivate", c.Ride.Deactivate, RequireRole("driver"))

	// Bookings
	auth.POST("/bookings", c.Booking.Create)
	auth.GET("/bookings/my", c.Booking.My)
	auth.GET("/bookings/:id", c.Booking.Detail)
	auth.POST("/bookings/:id/location", c.Booking.Location)
	auth.PATCH("/bookings/:id/status", c.Booking.UpdateStatus)
	auth.POST("/bookings/:id/cancel", c.Booking.Cancel)

	// Reschedule
	auth.POST("/bookings/:id/reschedule", c.Reschedule.Request)
	auth.GET("/reschedule/:id", c.Reschedule.Detail)
	auth.POST("/reschedule/:id/confirm", c.Reschedule.Confirm, RequireRole("admin"))
	auth.POST("/reschedule/:id/reject", c.Reschedule.Reject, RequireRole("admin"))

	// Notifications
	auth.POST("/notifications/token", c.Notification.RegisterToken)
}
