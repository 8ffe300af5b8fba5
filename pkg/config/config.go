package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/funnelcart/pkg/enums"
)

const (
	// EnvPrefix is intentionally empty: every tag carries the full name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Coupons  CouponsConfig
	Profiles ProfilesConfig
	Engine   EngineConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FUNNELCART_APP_ENV" default:"dev"`
	Port         string `envconfig:"FUNNELCART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FUNNELCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FUNNELCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"FUNNELCART_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"FUNNELCART_DB_DSN" default:"file:funnelcart.db?_journal_mode=WAL"`

	MaxOpenConns    int           `envconfig:"FUNNELCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FUNNELCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FUNNELCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FUNNELCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	Enabled      bool          `envconfig:"FUNNELCART_REDIS_ENABLED" default:"false"`
	URL          string        `envconfig:"FUNNELCART_REDIS_URL"`
	Address      string        `envconfig:"FUNNELCART_REDIS_ADDR"`
	Password     string        `envconfig:"FUNNELCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"FUNNELCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FUNNELCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FUNNELCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FUNNELCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FUNNELCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FUNNELCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	Path     string        `envconfig:"FUNNELCART_CATALOG_PATH" default:"config/catalog.json"`
	CacheTTL time.Duration `envconfig:"FUNNELCART_CATALOG_CACHE_TTL" default:"5m"`
}

type CouponsConfig struct {
	Path string `envconfig:"FUNNELCART_COUPONS_PATH" default:"config/coupons.json"`
}

type ProfilesConfig struct {
	Path string `envconfig:"FUNNELCART_PROFILES_PATH" default:"config/profiles.json"`
}

type EngineConfig struct {
	Currency    string `envconfig:"FUNNELCART_CURRENCY" default:"USD"`
	TaxRate     string `envconfig:"FUNNELCART_TAX_RATE" default:"0"`
	QueueBuffer int    `envconfig:"FUNNELCART_QUEUE_BUFFER" default:"64"`
}

func (e EngineConfig) validate() error {
	if _, err := enums.ParseCurrency(e.Currency); err != nil {
		return fmt.Errorf("engine currency: %w", err)
	}
	rate, err := decimal.NewFromString(e.TaxRate)
	if err != nil {
		return fmt.Errorf("engine tax rate: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("engine tax rate must be within [0,1], got %s", rate)
	}
	if e.QueueBuffer <= 0 {
		return fmt.Errorf("engine queue buffer must be positive")
	}
	return nil
}

// CurrencyCode returns the configured currency as a typed enum.
func (e EngineConfig) CurrencyCode() enums.Currency {
	currency, err := enums.ParseCurrency(e.Currency)
	if err != nil {
		return enums.CurrencyUSD
	}
	return currency
}

// TaxRateDecimal returns the configured tax rate as a decimal fraction.
func (e EngineConfig) TaxRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(e.TaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}
