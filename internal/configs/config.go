package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Хранилища истории версий
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type RestConfig struct {
	Port               string
	CorsAllowedOrigins []string
}

type DBconfig struct {
	URL string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Enabled bool
	URL     string
}

type GeoapifyConfig struct {
	BaseURL        string
	APIKey         string
	Parallelism    int
	RandomDelay    time.Duration
	BoundaryLevels []string
	RequestTimeout time.Duration
}

type BoundaryConfig struct {
	SessionTTL       time.Duration
	BatchConcurrency int
}

type IngestionConfig struct {
	StreamIdleTimeout time.Duration
}

type StdoutLogConfig struct {
	Level    string
	UseColor bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RestConfig
	Storage      string
	Database     DBconfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Geoapify     GeoapifyConfig
	Boundary     BoundaryConfig
	Ingestion    IngestionConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из .env (если он есть) и переменных окружения
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// в контейнере переменные приходят из окружения, .env не обязателен
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "artifact-service")

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.CorsAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	cfg.Storage = strings.ToLower(getEnvAsString("STORAGE_BACKEND", StorageMemory))
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for STORAGE_BACKEND=postgres")
		}
	case StorageRedis:
		cfg.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
		cfg.Redis.Password = getEnvAsString("REDIS_PASSWORD", "")
		cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (expected memory, postgres or redis)", cfg.Storage)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
	}

	cfg.Geoapify.BaseURL = getEnvAsString("GEOAPIFY_BASE_URL", "https://api.geoapify.com")
	cfg.Geoapify.APIKey = os.Getenv("GEOAPIFY_API_KEY")
	if cfg.Geoapify.APIKey == "" {
		log.Println("WARNING: GEOAPIFY_API_KEY is not set. Every address will resolve as unresolved.")
	}
	cfg.Geoapify.Parallelism = getEnvAsInt("GEOAPIFY_PARALLELISM", 4)
	cfg.Geoapify.RandomDelay = getEnvAsDuration("GEOAPIFY_RANDOM_DELAY", 0)
	cfg.Geoapify.BoundaryLevels = getEnvAsList("GEOAPIFY_BOUNDARY_LEVELS", []string{"city", "district", "suburb", "neighbourhood", "residential"})
	cfg.Geoapify.RequestTimeout = getEnvAsDuration("GEOAPIFY_REQUEST_TIMEOUT", 10*time.Second)

	cfg.Boundary.SessionTTL = getEnvAsDuration("BOUNDARY_SESSION_TTL", 30*time.Minute)
	cfg.Boundary.BatchConcurrency = getEnvAsInt("BOUNDARY_BATCH_CONCURRENCY", 4)

	cfg.Ingestion.StreamIdleTimeout = getEnvAsDuration("STREAM_IDLE_TIMEOUT", 2*time.Minute)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.UseColor = getEnvAsBool("STDOUT_LOG_COLOR", true)

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную как int.
// Если значение есть, но не парсится, пишет предупреждение и возвращает default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList читает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
