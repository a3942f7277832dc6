package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvClockOffset = "CLOCK_OFFSET"

	EnvAllocationMaxDuration = "ALLOCATION_MAX_DURATION"

	EnvAllocationLockTTL        = "ALLOCATION_LOCK_TTL"
	EnvAllocationLockRetries    = "ALLOCATION_LOCK_RETRIES"
	EnvAllocationLockRetryDelay = "ALLOCATION_LOCK_RETRY_DELAY"
)
