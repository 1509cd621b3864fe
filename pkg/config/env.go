package config

const EnvPrefix = "SHERRYS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Variables referenced by name in errors and tests.
const (
	EnvAppEnv            = "SHERRYS_APP_ENV"
	EnvDBDSN             = "SHERRYS_DB_DSN"
	EnvDBHost            = "SHERRYS_DB_HOST"
	EnvDBUser            = "SHERRYS_DB_USER"
	EnvDBPassword        = "SHERRYS_DB_PASSWORD"
	EnvDBName            = "SHERRYS_DB_NAME"
	EnvRedisURL          = "SHERRYS_REDIS_URL"
	EnvBusinessTimezone  = "SHERRYS_BUSINESS_TIMEZONE"
	EnvPubSubOrdersTopic = "SHERRYS_PUBSUB_ORDERS_TOPIC"
	EnvOutboxMaxAttempts = "SHERRYS_OUTBOX_MAX_ATTEMPTS"
	EnvCronLockTTL       = "SHERRYS_CRON_LOCK_TTL"
)
