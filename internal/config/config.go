package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	HTTPPort string
	GRPCPort string

	Storage   string
	MySQLDSN  string
	RedisAddr string

	RabbitMQURL    string
	EventsExchange string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	BookCacheSize int
	BookCacheTTL  time.Duration

	CORSOrigins []string

	LogLevel  string
	LogFormat string
	GinMode   string
}

// Load reads the process environment, seeded from the given .env files when
// they exist. Variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "3000"),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		Storage:        strings.ToLower(getEnv("STORAGE", StorageMySQL)),
		MySQLDSN:       getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/bookstore?parseTime=true"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "bookstore.events"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		JWTTTL:         getEnvAsDuration("JWT_TTL", time.Hour),
		BcryptCost:     getEnvAsInt("BCRYPT_COST", 10),
		BookCacheSize:  getEnvAsInt("BOOK_CACHE_SIZE", 1024),
		BookCacheTTL:   getEnvAsDuration("BOOK_CACHE_TTL", 30*time.Second),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		GinMode:        getEnv("GIN_MODE", "release"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
