package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	// Source transactional database the extractor reads from. When
	// SourceDBHost and SourceDBPath are both empty the warehouse
	// connection doubles as the source.
	SourceDBType     string
	SourceDBHost     string
	SourceDBPort     string
	SourceDBName     string
	SourceDBUser     string
	SourceDBPassword string
	SourceDBSSLMode  string
	SourceDBPath     string

	WarehouseDBType            string
	WarehouseDBHost            string
	WarehouseDBPort            string
	WarehouseDBName            string
	WarehouseDBUser            string
	WarehouseDBPassword        string
	WarehouseDBSSLMode         string
	WarehouseDBPath            string
	WarehouseDBMaxIdleConn     int
	WarehouseDBMaxOpenConn     int
	WarehouseDBConnMaxLifetime int
	WarehouseDBConnMaxIdleTime int

	// StoreDir is the root of the extract file store.
	StoreDir string

	// BatchDate overrides the batch date for the next run (YYYY-MM-DD).
	// Empty means "today" in UTC.
	BatchDate string

	MaxExtractWorkers int

	RunMigrations bool

	// CronSchedule, when set, keeps the process alive and runs the
	// pipeline on the given cron expression instead of once.
	CronSchedule string

	MetricsAddr string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "loadstone"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),

		SourceDBType:     getenv("SOURCE_DATABASE_TYPE", "postgres"),
		SourceDBHost:     getenv("SOURCE_DATABASE_HOST", ""),
		SourceDBPort:     getenv("SOURCE_DATABASE_PORT", "5432"),
		SourceDBName:     getenv("SOURCE_DATABASE_NAME", "classicmodels"),
		SourceDBUser:     getenv("SOURCE_DATABASE_USER", "postgres"),
		SourceDBPassword: getenv("SOURCE_DATABASE_PASSWORD", ""),
		SourceDBSSLMode:  getenv("SOURCE_DATABASE_SSLMODE", "disable"),
		SourceDBPath:     getenv("SOURCE_DATABASE_PATH", ""),

		WarehouseDBType:            getenv("WAREHOUSE_DATABASE_TYPE", "postgres"),
		WarehouseDBHost:            getenv("WAREHOUSE_DATABASE_HOST", "localhost"),
		WarehouseDBPort:            getenv("WAREHOUSE_DATABASE_PORT", "5432"),
		WarehouseDBName:            getenv("WAREHOUSE_DATABASE_NAME", "warehouse"),
		WarehouseDBUser:            getenv("WAREHOUSE_DATABASE_USER", "postgres"),
		WarehouseDBPassword:        getenv("WAREHOUSE_DATABASE_PASSWORD", ""),
		WarehouseDBSSLMode:         getenv("WAREHOUSE_DATABASE_SSLMODE", "disable"),
		WarehouseDBPath:            getenv("WAREHOUSE_DATABASE_PATH", ""),
		WarehouseDBMaxIdleConn:     getenvInt("WAREHOUSE_DATABASE_MAX_IDLE_CONN", 5),
		WarehouseDBMaxOpenConn:     getenvInt("WAREHOUSE_DATABASE_MAX_OPEN_CONN", 25),
		WarehouseDBConnMaxLifetime: getenvInt("WAREHOUSE_DATABASE_CONN_MAX_LIFETIME", 1800),
		WarehouseDBConnMaxIdleTime: getenvInt("WAREHOUSE_DATABASE_CONN_MAX_IDLE_TIME", 300),

		StoreDir:          getenv("STORE_DIR", "data/extracts"),
		BatchDate:         strings.TrimSpace(getenv("BATCH_DATE", "")),
		MaxExtractWorkers: getenvInt("MAX_EXTRACT_WORKERS", 4),
		RunMigrations:     getenvBool("RUN_MIGRATIONS", false),
		CronSchedule:      strings.TrimSpace(getenv("CRON_SCHEDULE", "")),
		MetricsAddr:       strings.TrimSpace(getenv("METRICS_ADDR", "")),
	}

	return cfg
}

// ResolveBatchDate parses the BatchDate override, falling back to the
// given "today" at midnight UTC.
func (c Config) ResolveBatchDate(today time.Time) (time.Time, error) {
	if c.BatchDate == "" {
		return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.ParseInLocation("2006-01-02", c.BatchDate, time.UTC)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
