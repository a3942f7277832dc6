package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Offset of the single region the system schedules in.
	DefaultClockOffset = "-03:00"

	DefaultAllocationMaxDuration = 2 * time.Hour

	DefaultAllocationLockTTL        = 10 * time.Second
	DefaultAllocationLockRetries    = 3
	DefaultAllocationLockRetryDelay = 150 * time.Millisecond

	DefaultPaginationLimit = 100
)
