package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"roomly/pkg/client"
	"roomly/pkg/clock"
	"roomly/pkg/logger"
)

var clockOffsetRegex = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ClockOffset string

	AllocationMaxDuration time.Duration

	AllocationLockTTL        time.Duration
	AllocationLockRetries    int
	AllocationLockRetryDelay time.Duration

	Log    *logger.Logger
	Client *client.Client
	Clock  clock.Clock
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ClockOffset: getEnvStr(EnvClockOffset, DefaultClockOffset),

		AllocationMaxDuration: getEnvDuration(EnvAllocationMaxDuration, DefaultAllocationMaxDuration),

		AllocationLockTTL:        getEnvDuration(EnvAllocationLockTTL, DefaultAllocationLockTTL),
		AllocationLockRetries:    getEnvNum(EnvAllocationLockRetries, DefaultAllocationLockRetries),
		AllocationLockRetryDelay: getEnvDuration(EnvAllocationLockRetryDelay, DefaultAllocationLockRetryDelay),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}

	location, err := ParseClockOffset(cfg.ClockOffset)
	if err != nil {
		cfg.Log.Fatal("Invalid clock offset", "offset", cfg.ClockOffset, "error", err)
	}
	cfg.Clock = clock.New(location)

	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// ParseClockOffset turns a "+HH:MM"/"-HH:MM" offset into a fixed location.
func ParseClockOffset(offset string) (*time.Location, error) {
	matches := clockOffsetRegex.FindStringSubmatch(offset)
	if matches == nil {
		return nil, fmt.Errorf("clock offset must be in +HH:MM or -HH:MM format, got: %s", offset)
	}

	hours, _ := strconv.Atoi(matches[2])
	minutes, _ := strconv.Atoi(matches[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("clock offset out of range: %s", offset)
	}

	seconds := hours*3600 + minutes*60
	if matches[1] == "-" {
		seconds = -seconds
	}
	return time.FixedZone(offset, seconds), nil
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if !clockOffsetRegex.MatchString(cfg.ClockOffset) {
		errs = append(errs, fmt.Sprintf("ClockOffset must be in +HH:MM or -HH:MM format, got: %s", cfg.ClockOffset))
	}

	if cfg.AllocationMaxDuration <= 0 {
		errs = append(errs, fmt.Sprintf("AllocationMaxDuration must be positive, got: %s", cfg.AllocationMaxDuration))
	}
	if cfg.AllocationLockTTL <= 0 {
		errs = append(errs, fmt.Sprintf("AllocationLockTTL must be positive, got: %s", cfg.AllocationLockTTL))
	}
	if cfg.AllocationLockRetries < 0 {
		errs = append(errs, fmt.Sprintf("AllocationLockRetries cannot be negative, got: %d", cfg.AllocationLockRetries))
	}
	if cfg.AllocationLockRetryDelay <= 0 {
		errs = append(errs, fmt.Sprintf("AllocationLockRetryDelay must be positive, got: %s", cfg.AllocationLockRetryDelay))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"clock_offset", cfg.ClockOffset,
		"allocation_max_duration", cfg.AllocationMaxDuration,
		"allocation_lock_ttl", cfg.AllocationLockTTL,
		"allocation_lock_retries", cfg.AllocationLockRetries,
		"allocation_lock_retry_delay", cfg.AllocationLockRetryDelay,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
