package config

import (
	"log/slog"
	"os"
)

func Load() App {
	cfg := App{
		Port:                getenv("APP_PORT", "8080"),
		DatabaseURL:         must("DATABASE_URL"),
		JWTSecret:           getenv("JWT_SECRET", "local_dev_secret"),
		XenditAPIKey:        os.Getenv("XENDIT_API_KEY"),
		XenditCallbackToken: os.Getenv("XENDIT_CALLBACK_TOKEN"),
		PushBaseURL:         os.Getenv("PUSH_BASE_URL"),
		PushAPIKey:          os.Getenv("PUSH_API_KEY"),
		GoodsTripOnDistance: getenv("GOODS_TRIP_ON_DISTANCE", "true") != "false",
		Env:                 getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
