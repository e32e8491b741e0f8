package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/narwhalmedia/phimdash/pkg/database"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Event broker configuration
	Events EventsConfig

	// Media storage configuration
	Storage StorageConfig

	// Remote catalog crawler configuration
	Crawler CrawlerConfig

	// Trash retention configuration
	Trash TrashConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	GRPCPort     int
	HTTPPort     int
	Environment  string
	ServiceName  string
	ShutdownTime time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	Debug        bool
}

// EventsConfig selects and configures the event broker
type EventsConfig struct {
	Broker string // none, nats or kafka
	NATS   NATSConfig
	Kafka  KafkaConfig
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL           string
	ClientID      string
	Stream        string
	MaxReconnect  int
	ReconnectWait time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type      string // local or s3
	LocalPath string
	S3        S3Config
}

// S3Config holds S3/MinIO configuration
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UsePathStyle    bool
}

// CrawlerConfig holds remote catalog and synchronizer configuration
type CrawlerConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxAttempts       int
	RetryDelay        time.Duration
	SkipGenres        bool
	SkipCountries     bool
	ReencodeImages    bool
	Transactional     bool
}

// TrashConfig holds soft delete retention configuration
type TrashConfig struct {
	Retention     time.Duration
	SweepInterval time.Duration
	SweepEnabled  bool
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	LogLevel      string
	LogFormat     string // json or console
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// take precedence over it.
func Load(serviceName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			GRPCPort:     getEnvAsInt("GRPC_PORT", 9090),
			HTTPPort:     getEnvAsInt("HTTP_PORT", 8080),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ShutdownTime: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Minute),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", database.DriverPostgres),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "phimdash"),
			Password:     getEnv("DB_PASSWORD", "phimdash"),
			Database:     getEnv("DB_NAME", "phimdash"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "phimdash.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			Debug:        getEnvAsBool("DB_DEBUG", false),
		},
		Events: EventsConfig{
			Broker: getEnv("EVENTS_BROKER", "none"),
			NATS: NATSConfig{
				URL:           getEnv("NATS_URL", "nats://localhost:4222"),
				ClientID:      fmt.Sprintf("%s-%s", serviceName, getEnv("HOSTNAME", "local")),
				Stream:        getEnv("NATS_STREAM", "CATALOG_EVENTS"),
				MaxReconnect:  getEnvAsInt("NATS_MAX_RECONNECT", 60),
				ReconnectWait: getEnvAsDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			},
			Kafka: KafkaConfig{
				Brokers:  getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
				Topic:    getEnv("KAFKA_TOPIC", "phimdash.catalog"),
				ClientID: serviceName,
			},
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./data/media"),
			S3: S3Config{
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
				Bucket:          getEnv("S3_BUCKET", "media"),
				Region:          getEnv("S3_REGION", "us-east-1"),
				UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", true),
			},
		},
		Crawler: CrawlerConfig{
			BaseURL:           getEnv("PHIMAPI_BASE_URL", "https://phimapi.com"),
			Timeout:           getEnvAsDuration("PHIMAPI_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getEnvAsFloat("PHIMAPI_RATE", 5),
			Burst:             getEnvAsInt("PHIMAPI_BURST", 5),
			MaxAttempts:       getEnvAsInt("PHIMAPI_MAX_ATTEMPTS", 3),
			RetryDelay:        getEnvAsDuration("PHIMAPI_RETRY_DELAY", 500*time.Millisecond),
			SkipGenres:        getEnvAsBool("CRAWL_SKIP_GENRES", false),
			SkipCountries:     getEnvAsBool("CRAWL_SKIP_COUNTRIES", false),
			ReencodeImages:    getEnvAsBool("CRAWL_REENCODE_IMAGES", false),
			Transactional:     getEnvAsBool("CRAWL_TRANSACTIONAL", true),
		},
		Trash: TrashConfig{
			Retention:     getEnvAsDuration("TRASH_RETENTION", 30*24*time.Hour),
			SweepInterval: getEnvAsDuration("TRASH_SWEEP_INTERVAL", time.Hour),
			SweepEnabled:  getEnvAsBool("TRASH_SWEEP_ENABLED", true),
		},
		Observability: ObservabilityConfig{
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			LogFormat:     getEnv("LOG_FORMAT", "json"),
			LogFile:       getEnv("LOG_FILE", ""),
			LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverPostgres, database.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Events.Broker {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("invalid EVENTS_BROKER %q", c.Events.Broker)
	}
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Trash.Retention <= 0 {
		return fmt.Errorf("TRASH_RETENTION must be positive")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(strValue, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// DSN returns the database connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == database.DriverSQLite {
		return d.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode)
}

// Connection returns the settings used to open the database.
func (d DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		DSN:             d.DSN(),
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.MaxLifetime,
		Debug:           d.Debug,
	}
}
