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
	Checkout      CheckoutConfig
	Cart          CartConfig
	Dispatch      DispatchConfig
	Mail          MailConfig
	Cron          CronConfig
	Notifications NotificationsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MOSAIC_APP_ENV" required:"true"`
	Port         string `envconfig:"MOSAIC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MOSAIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MOSAIC_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"MOSAIC_LOG_FORMAT" default:"json"`
	// PublicURL prefixes links embedded in emails and notifications.
	PublicURL string `envconfig:"MOSAIC_PUBLIC_URL" default:"http://localhost:3000"`
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `envconfig:"MOSAIC_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MOSAIC_DB_DSN"`
	Driver string `envconfig:"MOSAIC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MOSAIC_DB_HOST"`
	Port     int    `envconfig:"MOSAIC_DB_PORT" default:"5432"`
	User     string `envconfig:"MOSAIC_DB_USER"`
	Password string `envconfig:"MOSAIC_DB_PASSWORD"`
	Name     string `envconfig:"MOSAIC_DB_NAME"`
	SSLMode  string `envconfig:"MOSAIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOSAIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOSAIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOSAIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOSAIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOSAIC_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"MOSAIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOSAIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOSAIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOSAIC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOSAIC_REDIS_WRITE_TIMEOUT" default:"5s"`
	// IdempotencyTTL bounds how long a replayable checkout response is kept.
	IdempotencyTTL time.Duration `envconfig:"MOSAIC_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type JWTConfig struct {
	Secret string        `envconfig:"MOSAIC_JWT_SECRET" required:"true"`
	Issuer string        `envconfig:"MOSAIC_JWT_ISSUER" required:"true"`
	TTL    time.Duration `envconfig:"MOSAIC_JWT_TTL" default:"1h"`
}

type CheckoutConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"MOSAIC_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"500000"`
	FlatShippingFee       decimal.Decimal `envconfig:"MOSAIC_CHECKOUT_FLAT_SHIPPING_FEE" default:"30000"`
	BankName              string          `envconfig:"MOSAIC_CHECKOUT_BANK_NAME" default:"Vietcombank"`
	BankAccountNumber     string          `envconfig:"MOSAIC_CHECKOUT_BANK_ACCOUNT_NUMBER" default:"0000000000"`
	BankAccountName       string          `envconfig:"MOSAIC_CHECKOUT_BANK_ACCOUNT_NAME" default:"MOSAIC STORE"`
}

func (c CheckoutConfig) validate() error {
	if c.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvFreeShippingThreshold)
	}
	if c.FlatShippingFee.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvFlatShippingFee)
	}
	return nil
}

type CartConfig struct {
	TTL                time.Duration `envconfig:"MOSAIC_CART_TTL" default:"168h"`
	AbandonedAfter     time.Duration `envconfig:"MOSAIC_CART_ABANDONED_AFTER" default:"24h"`
	GuestHeaderEnabled bool          `envconfig:"MOSAIC_CART_GUEST_HEADER_ENABLED" default:"true"`
}

type DispatchConfig struct {
	Workers        int           `envconfig:"MOSAIC_DISPATCH_WORKERS" default:"8"`
	QueueSize      int           `envconfig:"MOSAIC_DISPATCH_QUEUE_SIZE" default:"256"`
	TaskTimeout    time.Duration `envconfig:"MOSAIC_DISPATCH_TASK_TIMEOUT" default:"30s"`
	AcquireTimeout time.Duration `envconfig:"MOSAIC_DISPATCH_GATE_ACQUIRE_TIMEOUT" default:"2s"`
	// GatePermits maps a resource category to its concurrent permit count,
	// e.g. "cart:5,order:5,email:3,notification:10".
	GatePermits map[string]int `envconfig:"MOSAIC_DISPATCH_GATE_PERMITS" default:"cart:5,order:5,email:3,notification:10"`
}

type MailConfig struct {
	SMTPHost     string `envconfig:"MOSAIC_MAIL_SMTP_HOST"`
	SMTPPort     int    `envconfig:"MOSAIC_MAIL_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"MOSAIC_MAIL_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"MOSAIC_MAIL_SMTP_PASSWORD"`
	From         string `envconfig:"MOSAIC_MAIL_FROM" default:"Mosaic Store <no-reply@mosaic.local>"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SMTPHost) != ""
}

type CronConfig struct {
	Interval  time.Duration `envconfig:"MOSAIC_CRON_INTERVAL" default:"15m"`
	BatchSize int           `envconfig:"MOSAIC_CRON_BATCH_SIZE" default:"100"`
	LockTTL   time.Duration `envconfig:"MOSAIC_CRON_LOCK_TTL" default:"10m"`
}

type NotificationsConfig struct {
	RetentionDays int `envconfig:"MOSAIC_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MOSAIC_FEATURE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MOSAIC_FEATURE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
