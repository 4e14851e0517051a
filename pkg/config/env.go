package config

// EnvPrefix namespaces every variable the service reads.
const EnvPrefix = "MOSAIC"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const defaultSQLiteDSN = "file:mosaic.db?_foreign_keys=on"

const (
	EnvAppEnv   = "MOSAIC_APP_ENV"
	EnvPort     = "MOSAIC_APP_PORT"
	EnvLogLevel = "MOSAIC_LOG_LEVEL"

	EnvDBDSN  = "MOSAIC_DB_DSN"
	EnvDBHost = "MOSAIC_DB_HOST"
	EnvDBUser = "MOSAIC_DB_USER"
	EnvDBName = "MOSAIC_DB_NAME"

	EnvRedisURL  = "MOSAIC_REDIS_URL"
	EnvJWTSecret = "MOSAIC_JWT_SECRET"
	EnvJWTIssuer = "MOSAIC_JWT_ISSUER"

	EnvFreeShippingThreshold = "MOSAIC_CHECKOUT_FREE_SHIPPING_THRESHOLD"
	EnvFlatShippingFee       = "MOSAIC_CHECKOUT_FLAT_SHIPPING_FEE"
	EnvGatePermits           = "MOSAIC_DISPATCH_GATE_PERMITS"
	EnvUseSQLite             = "MOSAIC_FEATURE_USE_SQLITE"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
