package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/cart"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

const devSessionSecret = "dev_session_secret_change_me"

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	// WooCommerce（注文作成・商品取得）
	APIBaseURL string
	APIKey     string
	APISecret  string

	SessionSecret string        // セッションcookieの署名
	SessionTTL    time.Duration // cookieの有効期間

	CartStore string        // memory / redis / postgres
	CartTTL   time.Duration // redis保存時のTTL

	Redis    RedisConfig
	Postgres PostgresConfig

	Shipping cart.ShippingPolicy

	LogLevel  string
	LogFormat string // text / json
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	URL      string // DATABASE_URL があれば最優先
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

// 注文APIに必要な3つが揃っているか
func (c Config) APIConfigured() bool {
	return c.APIBaseURL != "" && c.APIKey != "" && c.APISecret != ""
}

// Loadは環境変数（と任意の config.yaml）から設定を読む
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("go_env", "dev")

	v.SetDefault("api_base_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("api_secret", "")

	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl", "720h")

	v.SetDefault("cart_store", StoreMemory)
	v.SetDefault("cart_ttl", "720h")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("database_url", "")
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "postgres")
	v.SetDefault("postgres_db", "storefront")
	v.SetDefault("postgres_sslmode", "disable")

	def := cart.DefaultShippingPolicy()
	v.SetDefault("shipping_light_limit", def.LightLimit)
	v.SetDefault("shipping_heavy_limit", def.HeavyLimit)
	v.SetDefault("shipping_light_fee", def.LightFee)
	v.SetDefault("shipping_standard_fee", def.StandardFee)
	v.SetDefault("shipping_heavy_fee", def.HeavyFee)
	v.SetDefault("shipping_currency", def.Currency)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:  strings.TrimPrefix(v.GetString("port"), ":"),
		GoEnv: v.GetString("go_env"),

		APIBaseURL: strings.TrimSpace(v.GetString("api_base_url")),
		APIKey:     v.GetString("api_key"),
		APISecret:  v.GetString("api_secret"),

		SessionSecret: v.GetString("session_secret"),
		SessionTTL:    v.GetDuration("session_ttl"),

		CartStore: strings.ToLower(v.GetString("cart_store")),
		CartTTL:   v.GetDuration("cart_ttl"),

		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Postgres: PostgresConfig{
			URL:      v.GetString("database_url"),
			Host:     v.GetString("postgres_host"),
			Port:     v.GetInt("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			DB:       v.GetString("postgres_db"),
			SSLMode:  v.GetString("postgres_sslmode"),
		},

		Shipping: cart.ShippingPolicy{
			LightLimit:  v.GetFloat64("shipping_light_limit"),
			HeavyLimit:  v.GetFloat64("shipping_heavy_limit"),
			LightFee:    v.GetFloat64("shipping_light_fee"),
			StandardFee: v.GetFloat64("shipping_standard_fee"),
			HeavyFee:    v.GetFloat64("shipping_heavy_fee"),
			Currency:    v.GetString("shipping_currency"),
		},

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.SessionSecret == "" {
		if cfg.GoEnv == "prod" {
			return Config{}, fmt.Errorf("SESSION_SECRET is required")
		}
		cfg.SessionSecret = devSessionSecret
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	switch cfg.CartStore {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return Config{}, fmt.Errorf("CART_STORE must be one of memory, redis, postgres: got %q", cfg.CartStore)
	}
	if cfg.CartTTL < 0 {
		return Config{}, fmt.Errorf("CART_TTL must not be negative")
	}
	if err := cfg.Shipping.Validate(); err != nil {
		return Config{}, fmt.Errorf("SHIPPING_*: %w", err)
	}

	return cfg, nil
}
