package config

type App struct {
	Port                string `env:"APP_PORT" default:"8080"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	JWTSecret           string `env:"JWT_SECRET,required"`
	XenditAPIKey        string `env:"XENDIT_API_KEY"`
	XenditCallbackToken string `env:"XENDIT_CALLBACK_TOKEN"`
	PushBaseURL         string `env:"PUSH_BASE_URL"`
	PushAPIKey          string `env:"PUSH_API_KEY"`
	// GoodsTripOnDistance enables the barang-only "menunggu ->
	// sedang_dalam_perjalanan" transition when a ping lands >100m from
	// pickup. Product has not decided whether the other kinds get the
	// same trigger, so it stays a knob instead of a hardcoded rule.
	GoodsTripOnDistance bool   `env:"GOODS_TRIP_ON_DISTANCE" default:"true"`
	Env                 string `env:"APP_ENV" default:"dev"`
}
