// Package main nebeng API.
//
// @title           Nebeng API
// @version         1.0
// @description     Ride and goods-delivery marketplace (rides, bookings, reschedule, payments).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"nebeng/app/echoServer"
	authctrl "nebeng/app/echoServer/controller/auth"
	bookingctrl "nebeng/app/echoServer/controller/booking"
	notifctrl "nebeng/app/echoServer/controller/notification"
	paymentctrl "nebeng/app/echoServer/controller/payment"
	reschedctrl "nebeng/app/echoServer/controller/reschedule"
	ridectrl "nebeng/app/echoServer/controller/ride"
	"nebeng/app/echoServer/validation"
	"nebeng/config"
	authrepo "nebeng/repository/auth"
	bookingrepo "nebeng/repository/booking"
	devicerepo "nebeng/repository/device"
	pushrepo "nebeng/repository/push"
	reschedulerepo "nebeng/repository/reschedule"
	riderepo "nebeng/repository/ride"
	xenditrepo "nebeng/repository/xendit"
	authsvc "nebeng/service/auth"
	bookingsvc "nebeng/service/booking"
	notificationsvc "nebeng/service/notification"
	paymentsvc "nebeng/service/payment"
	reschedulesvc "nebeng/service/reschedule"
	ridesvc "nebeng/service/ride"
	"nebeng/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB over the pgx stdlib driver
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ar := authrepo.New(db)
	rr := riderepo.New(db)
	br := bookingrepo.New(db)
	qr := reschedulerepo.New(db)
	dr := devicerepo.New(db)
	xr := xenditrepo.NewHTTP(cfg.XenditAPIKey, cfg.XenditCallbackToken)
	pr := pushrepo.NewHTTP(cfg.PushBaseURL, cfg.PushAPIKey)

	// services
	as := authsvc.New(ar, cfg.JWTSecret)
	rds := ridesvc.New(rr)
	ns := notificationsvc.New(dr, pr, log)
	machine := bookingsvc.NewMachine(cfg.GoodsTripOnDistance)
	bs := bookingsvc.New(db, br, rr, xr, machine, ns)
	qs := reschedulesvc.New(db, qr, br, rr, xr, ns)
	ps := paymentsvc.New(xr, br, qr, bs, qs, ns, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	rideC := &ridectrl.Controller{Svc: rds, V: v, Log: log}
	bookingC := &bookingctrl.Controller{Svc: bs, V: v, Log: log}
	reschedC := &reschedctrl.Controller{Svc: qs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	notifC := &notifctrl.Controller{Svc: ns, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Ride:         rideC,
		Booking:      bookingC,
		Reschedule:   reschedC,
		Payment:      paymentC,
		Notification: notifC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "env", cfg.Env, "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
