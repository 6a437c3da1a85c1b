package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	RequestTimeout time.Duration
	MySQLDSN       string
	AutoMigrate    bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SyncLockTTL    time.Duration
	GoogleBase     string
	GoogleKey      string
	GoogleRPS      int
	GoogleTimeout  time.Duration
	SeedFile       string
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/guestreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		AutoMigrate:    boolEnv("AUTO_MIGRATE", true),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SyncLockTTL:    time.Duration(atoi("SYNC_LOCK_TTL_SECONDS", 60)) * time.Second,
		GoogleBase:     env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleKey:      env("GOOGLE_PLACES_API_KEY", ""),
		GoogleRPS:      atoi("GOOGLE_PLACES_RPS", 5),
		GoogleTimeout:  time.Duration(atoi("GOOGLE_PLACES_TIMEOUT_SECONDS", 20)) * time.Second,
		SeedFile:       env("SEED_FILE", "data/mock_reviews.json"),
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty; google sync is disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func boolEnv(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
