package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Storefront    StorefrontConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CANDYLAB_APP_ENV" required:"true"`
	Port         string `envconfig:"CANDYLAB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CANDYLAB_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CANDYLAB_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CANDYLAB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"CANDYLAB_DB_DSN"`
	Driver string `envconfig:"CANDYLAB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CANDYLAB_DB_HOST"`
	LegacyPort     int    `envconfig:"CANDYLAB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CANDYLAB_DB_USER"`
	LegacyPassword string `envconfig:"CANDYLAB_DB_PASSWORD"`
	LegacyName     string `envconfig:"CANDYLAB_DB_NAME"`
	LegacySSLMode  string `envconfig:"CANDYLAB_DB_SSLMODE" default:"disable"`

	// SQLitePath is used when Driver is sqlite and DSN is empty.
	SQLitePath string `envconfig:"CANDYLAB_DB_SQLITE_PATH" default:"candylab.db"`

	MaxOpenConns    int           `envconfig:"CANDYLAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CANDYLAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CANDYLAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CANDYLAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery logs statements slower than this as warnings. Zero disables.
	SlowQuery time.Duration `envconfig:"CANDYLAB_DB_SLOW_QUERY" default:"500ms"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CANDYLAB_REDIS_URL" required:"true"`
	Password     string        `envconfig:"CANDYLAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"CANDYLAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CANDYLAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CANDYLAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CANDYLAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CANDYLAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CANDYLAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CANDYLAB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CANDYLAB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CANDYLAB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CANDYLAB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CANDYLAB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CANDYLAB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CANDYLAB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CANDYLAB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CANDYLAB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CANDYLAB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CANDYLAB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CANDYLAB_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CANDYLAB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	MaxAgeSeconds  int      `envconfig:"CANDYLAB_CORS_MAX_AGE_SECONDS" default:"300"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"CANDYLAB_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"CANDYLAB_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic  string `envconfig:"CANDYLAB_PUBSUB_ORDERS_TOPIC" default:"cl-orders"`
	ContestTopic string `envconfig:"CANDYLAB_PUBSUB_CONTEST_TOPIC" default:"cl-contest"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CANDYLAB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CANDYLAB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CANDYLAB_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (o OutboxConfig) PollInterval() time.Duration {
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

// StorefrontConfig carries the pricing and contest knobs. Amounts are KRW.
type StorefrontConfig struct {
	ShippingFee           int64           `envconfig:"CANDYLAB_SHIPPING_FEE" default:"2500"`
	FreeShippingThreshold int64           `envconfig:"CANDYLAB_FREE_SHIPPING_THRESHOLD" default:"30000"`
	DiscountRate          decimal.Decimal `envconfig:"CANDYLAB_DISCOUNT_RATE" default:"0"`
	CustomJellyPrice      int64           `envconfig:"CANDYLAB_CUSTOM_JELLY_PRICE" default:"9900"`
	WinnerJellyPrice      int64           `envconfig:"CANDYLAB_WINNER_JELLY_PRICE" default:"15900"`
	CartTTL               time.Duration   `envconfig:"CANDYLAB_CART_TTL" default:"168h"`
	VoteLockTTL           time.Duration   `envconfig:"CANDYLAB_VOTE_LOCK_TTL" default:"5s"`
}

func (s StorefrontConfig) validate() error {
	if s.ShippingFee < 0 || s.FreeShippingThreshold < 0 {
		return fmt.Errorf("%s and %s must be non-negative", EnvStorefrontShippingFee, EnvStorefrontFreeThreshold)
	}
	if s.DiscountRate.IsNegative() || s.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1", EnvStorefrontDiscountRate)
	}
	if s.CustomJellyPrice <= 0 || s.WinnerJellyPrice <= 0 {
		return fmt.Errorf("jelly prices must be positive")
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = db.SQLitePath
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
