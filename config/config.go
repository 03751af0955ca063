package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	WallapopURL      string
	SearchKeywords   string
	SearchCategoryID string
	PageSize         int
	PageDelayMs      int
	HTTPTimeoutSec   int

	ElasticURL        string
	ElasticIndex      string
	PublishTimeoutSec int

	DataDir string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		WallapopURL:      getEnv("WALLAPOP_API_URL", "https://api.wallapop.com/api/v3/search"),
		SearchKeywords:   getEnv("SEARCH_KEYWORDS", "moto"),
		SearchCategoryID: getEnv("SEARCH_CATEGORY_ID", "14000"),
		PageSize:         getEnvInt("PAGE_SIZE", 50),
		PageDelayMs:      getEnvInt("PAGE_DELAY_MS", 500),
		HTTPTimeoutSec:   getEnvInt("HTTP_TIMEOUT_SEC", 15),

		ElasticURL:        getEnv("ELASTICSEARCH_URL", "http://elasticsearch:9200"),
		ElasticIndex:      getEnv("ELASTICSEARCH_INDEX", "wallapop-motos"),
		PublishTimeoutSec: getEnvInt("PUBLISH_TIMEOUT_SEC", 10),

		DataDir: getEnv("DATA_DIR", "./data"),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "poller"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "poller123"),
		PostgresDB:       getEnv("POSTGRES_DB", "wallapop_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
