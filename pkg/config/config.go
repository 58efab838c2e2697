package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Wallet       WalletConfig
	RateLimit    RateLimitConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORBIT_APP_ENV" required:"true"`
	Port         string `envconfig:"ORBIT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORBIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORBIT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ORBIT_DB_DSN"`

	LegacyHost     string `envconfig:"ORBIT_DB_HOST"`
	LegacyPort     int    `envconfig:"ORBIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORBIT_DB_USER"`
	LegacyPassword string `envconfig:"ORBIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORBIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORBIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORBIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORBIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORBIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORBIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORBIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORBIT_REDIS_ADDR"`
	Password     string        `envconfig:"ORBIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORBIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORBIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORBIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORBIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORBIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORBIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"ORBIT_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"ORBIT_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"ORBIT_STRIPE_ENV" default:"test"`
	EventDedupTTL time.Duration `envconfig:"ORBIT_STRIPE_EVENT_DEDUP_TTL" default:"720h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type WalletConfig struct {
	TopUpCeiling    float64 `envconfig:"ORBIT_WALLET_TOPUP_CEILING" default:"1000"`
	DefaultCurrency string  `envconfig:"ORBIT_WALLET_DEFAULT_CURRENCY" default:"usd"`
}

type RateLimitConfig struct {
	TopUpWindow       time.Duration `envconfig:"ORBIT_RATE_LIMIT_TOPUP_WINDOW" default:"1m"`
	TopUpUserLimit    int           `envconfig:"ORBIT_RATE_LIMIT_TOPUP_USER_LIMIT" default:"10"`
	TopUpIPLimit      int           `envconfig:"ORBIT_RATE_LIMIT_TOPUP_IP_LIMIT" default:"30"`
	LocationWindow    time.Duration `envconfig:"ORBIT_RATE_LIMIT_LOCATION_WINDOW" default:"1m"`
	LocationUserLimit int           `envconfig:"ORBIT_RATE_LIMIT_LOCATION_USER_LIMIT" default:"120"`
	LocationIPLimit   int           `envconfig:"ORBIT_RATE_LIMIT_LOCATION_IP_LIMIT" default:"240"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ORBIT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"ORBIT_PUBSUB_NOTIFICATION_TOPIC" default:"orbit-notification-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORBIT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
