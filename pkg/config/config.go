package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Shipping modes supported at checkout.
const (
	ShippingModePaidOnDelivery = "paid_on_delivery"
	ShippingModeQuoted         = "quoted"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Webpay       WebpayConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TIENDA_APP_ENV" required:"true"`
	Port         string `envconfig:"TIENDA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TIENDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TIENDA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TIENDA_DB_DSN"`
	Driver string `envconfig:"TIENDA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TIENDA_DB_HOST"`
	LegacyPort     int    `envconfig:"TIENDA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TIENDA_DB_USER"`
	LegacyPassword string `envconfig:"TIENDA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TIENDA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TIENDA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIENDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TIENDA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TIENDA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TIENDA_JWT_SECRET"`
	Issuer            string `envconfig:"TIENDA_JWT_ISSUER" default:"tienda"`
	ExpirationMinutes int    `envconfig:"TIENDA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CheckoutConfig struct {
	// ShippingMode selects whether checkout charges the resolver's quote or
	// defers shipping to pay-on-delivery (cost 0 on the order).
	ShippingMode string `envconfig:"TIENDA_CHECKOUT_SHIPPING_MODE" default:"paid_on_delivery"`

	// TaxRatePercent is the IVA rate applied to tax-inclusive prices.
	TaxRatePercent int `envconfig:"TIENDA_CHECKOUT_TAX_RATE_PERCENT" default:"19"`

	OrderNumberAttempts int `envconfig:"TIENDA_CHECKOUT_ORDER_NUMBER_ATTEMPTS" default:"5"`

	CallbackIdempotencyTTL time.Duration `envconfig:"TIENDA_CHECKOUT_CALLBACK_IDEMPOTENCY_TTL" default:"24h"`
}

func (c CheckoutConfig) validate() error {
	switch c.ShippingMode {
	case ShippingModePaidOnDelivery, ShippingModeQuoted:
	default:
		return fmt.Errorf("invalid shipping mode %q", c.ShippingMode)
	}
	if c.TaxRatePercent <= 0 || c.TaxRatePercent >= 100 {
		return fmt.Errorf("invalid tax rate %d", c.TaxRatePercent)
	}
	return nil
}

type WebpayConfig struct {
	CommerceCode string        `envconfig:"TIENDA_WEBPAY_COMMERCE_CODE"`
	APIKey       string        `envconfig:"TIENDA_WEBPAY_API_KEY"`
	BaseURL      string        `envconfig:"TIENDA_WEBPAY_BASE_URL"`
	ReturnURL    string        `envconfig:"TIENDA_WEBPAY_RETURN_URL" required:"true"`
	Timeout      time.Duration `envconfig:"TIENDA_WEBPAY_TIMEOUT" default:"15s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"TIENDA_DB_HOST": db.LegacyHost,
		"TIENDA_DB_USER": db.LegacyUser,
		"TIENDA_DB_NAME": db.LegacyName,
	}
	for _, env := range []string{"TIENDA_DB_HOST", "TIENDA_DB_USER", "TIENDA_DB_NAME"} {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either TIENDA_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
