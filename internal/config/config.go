package config

type Config struct {
	Environment  Environment
	Log          Log
	HTTP         HTTPServer
	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:8001"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"nakama.db"`

	Shopify       Shopify       `envPrefix:"SHOPIFY_"`
	Admin         Admin         `envPrefix:"ADMIN_"`
	SMTP          SMTP          `envPrefix:"SMTP_"`
	PriceCharting PriceCharting `envPrefix:"PRICECHARTING_"`
}

type Shopify struct {
	StoreURL        string `env:"STORE_URL"`
	StorefrontToken string `env:"STOREFRONT_TOKEN"`
	APIKey          string `env:"API_KEY"`
	APISecret       string `env:"API_SECRET"`
	Scopes          string `env:"SCOPES" envDefault:"read_products,read_orders"`
	RedirectURI     string `env:"REDIRECT_URI" envDefault:"http://localhost:8001/oauth/callback"`
	AdminToken      string `env:"ADMIN_TOKEN"`
}

type Admin struct {
	Email         string `env:"EMAIL" envDefault:"admin@tcgnakama.com"`
	Password      string `env:"PASSWORD"`
	SessionSecret string `env:"SESSION_SECRET"`
	VIPThreshold  int64  `env:"VIP_THRESHOLD" envDefault:"100000"`
}

type SMTP struct {
	Host      string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port      int    `env:"PORT" envDefault:"587"`
	Email     string `env:"EMAIL"`
	Password  string `env:"PASSWORD"`
	Recipient string `env:"RECIPIENT"`
}

type PriceCharting struct {
	APIKey string `env:"API_KEY"`
	// Minimum gap between requests. PriceCharting allows 1 req/sec.
	ThrottleMillis int `env:"THROTTLE_MS" envDefault:"1100"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8001"`
}
