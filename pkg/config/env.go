package config

const (
	EnvPrefix = "CANDYLAB"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "CANDYLAB_APP_ENV"
	EnvPort      = "CANDYLAB_APP_PORT"
	EnvLogLevel  = "CANDYLAB_LOG_LEVEL"
	EnvLogFormat = "CANDYLAB_LOG_FORMAT"

	EnvDBDSN    = "CANDYLAB_DB_DSN"
	EnvDBDriver = "CANDYLAB_DB_DRIVER"
	EnvDBHost   = "CANDYLAB_DB_HOST"
	EnvDBUser   = "CANDYLAB_DB_USER"
	EnvDBName   = "CANDYLAB_DB_NAME"

	EnvRedisURL = "CANDYLAB_REDIS_URL"

	EnvJWTSecret               = "CANDYLAB_JWT_SECRET"
	EnvJWTIssuer               = "CANDYLAB_JWT_ISSUER"
	EnvJWTExpMins              = "CANDYLAB_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "CANDYLAB_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite               = "CANDYLAB_USE_SQLITE"
	EnvAutoMigrate             = "CANDYLAB_AUTO_MIGRATE"
	EnvCORSAllowedOrigins      = "CANDYLAB_CORS_ALLOWED_ORIGINS"
	EnvGCPProjectID            = "CANDYLAB_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic       = "CANDYLAB_PUBSUB_ORDERS_TOPIC"
	EnvPubSubContestTopic      = "CANDYLAB_PUBSUB_CONTEST_TOPIC"
	EnvStorefrontShippingFee   = "CANDYLAB_SHIPPING_FEE"
	EnvStorefrontFreeThreshold = "CANDYLAB_FREE_SHIPPING_THRESHOLD"
	EnvStorefrontDiscountRate  = "CANDYLAB_DISCOUNT_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
