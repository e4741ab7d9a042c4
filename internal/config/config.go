package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Output destinations for the processed CSV artifact.
const (
	DestinationLocal = "local"
	DestinationMinIO = "minio"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	TMDB     TMDBConfig
	Pipeline PipelineConfig
	Output   OutputConfig
	MinIO    MinIOConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type TMDBConfig struct {
	APIKey             string
	BaseURL            string
	PosterBaseURL      string
	ProfileBaseURL     string
	Region             string
	OriginalLanguage   string
	DiscoverWindowDays int
	RateLimitDelay     time.Duration
	HTTPTimeout        time.Duration
}

// PipelineConfig holds the artifact locations on the local filesystem.
// StagingPath is always local; ProcessedPath is only consulted when the
// output destination is local.
type PipelineConfig struct {
	StagingPath   string
	ProcessedPath string
}

type OutputConfig struct {
	Destination string
	ObjectKey   string
}

type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	PublicURL       string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8010"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Enabled:         getBoolOrDefault("RUN_LOG_ENABLED", false),
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:          getEnvOrDefault("DB_NAME", "movie_pipeline"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			QueryTimeout:    getDurationOrDefault("DB_QUERY_TIMEOUT", 10*time.Second),
		},
		TMDB: TMDBConfig{
			APIKey:             os.Getenv("TMDB_API_KEY"),
			BaseURL:            getEnvOrDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			PosterBaseURL:      getEnvOrDefault("TMDB_POSTER_BASE_URL", "https://image.tmdb.org/t/p/w342"),
			ProfileBaseURL:     getEnvOrDefault("TMDB_PROFILE_BASE_URL", "https://image.tmdb.org/t/p/w185"),
			Region:             getEnvOrDefault("TMDB_REGION", "US"),
			OriginalLanguage:   getEnvOrDefault("TMDB_ORIGINAL_LANGUAGE", "en"),
			DiscoverWindowDays: getIntOrDefault("TMDB_DISCOVER_WINDOW_DAYS", 90),
			RateLimitDelay:     getDurationOrDefault("TMDB_RATE_LIMIT_DELAY", 300*time.Millisecond),
			HTTPTimeout:        getDurationOrDefault("TMDB_HTTP_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			StagingPath:   getEnvOrDefault("STAGING_PATH", "data/raw/raw_movies.json"),
			ProcessedPath: getEnvOrDefault("PROCESSED_PATH", "data/processed/processed_movies.csv"),
		},
		Output: OutputConfig{
			Destination: getEnvOrDefault("OUTPUT_DESTINATION", DestinationLocal),
			ObjectKey:   getEnvOrDefault("OUTPUT_OBJECT_KEY", "processed/processed_movies.csv"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnvOrDefault("AWS_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnvOrDefault("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnvOrDefault("AWS_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnvOrDefault("AWS_BUCKET", "movie-pipeline"),
			Region:          getEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1"),
			UseSSL:          getBoolOrDefault("AWS_USE_SSL", false),
			PublicURL:       getEnvOrDefault("AWS_URL", "http://localhost:9000/movie-pipeline"),
		},
	}
}

// GetDSN returns PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Validate enforces the fatal configuration rules for a given command before
// any network or file I/O happens. Which settings are required depends on the
// command: extraction needs the TMDB key, anything touching the remote
// destination needs object-store credentials.
func (c *Config) Validate(command string) error {
	if c.Output.Destination != DestinationLocal && c.Output.Destination != DestinationMinIO {
		return fmt.Errorf("OUTPUT_DESTINATION must be %q or %q, got %q",
			DestinationLocal, DestinationMinIO, c.Output.Destination)
	}

	needsTMDB := command == "extract" || command == "run"
	needsMinIO := c.Output.Destination == DestinationMinIO &&
		(command == "transform" || command == "run" || command == "serve")

	if needsTMDB && c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}

	if needsMinIO {
		if c.MinIO.AccessKeyID == "" {
			return fmt.Errorf("AWS_ACCESS_KEY_ID is required for MinIO output")
		}
		if c.MinIO.SecretAccessKey == "" {
			return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for MinIO output")
		}
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("AWS_ENDPOINT is required for MinIO output")
		}
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
