package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Query     QueryConfig
	Pipeline  PipelineConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// Enabled reports whether a shared redis cache was configured.
func (r RedisConfig) Enabled() bool {
	return r.RedisHost != ""
}

type CacheConfig struct {
	TTL time.Duration
}

type AnalyticsConfig struct {
	DefaultK          int
	ZThreshold        float64
	AnomalySampleSize int
}

type QueryConfig struct {
	DefaultPageSize   int
	MaxPageSize       int
	DefaultQueryLimit int
	MaxQueryLimit     int
}

type PipelineConfig struct {
	RawDataDir     string
	TripFile       string
	ZoneLookupFile string
	SeedBatchSize  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	zThreshold, err := strconv.ParseFloat(getEnv("ANOMALY_Z_THRESHOLD", "3.0"), 64)
	if err != nil || zThreshold <= 0 {
		return nil, errors.New("invalid anomaly z threshold")
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "NYC Taxi Data Explorer API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "nyc_taxi"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", ""),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Analytics: AnalyticsConfig{
			DefaultK:          getEnvInt("ANALYTICS_DEFAULT_K", 10),
			ZThreshold:        zThreshold,
			AnomalySampleSize: getEnvInt("ANOMALY_SAMPLE_SIZE", 10000),
		},
		Query: QueryConfig{
			DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 50),
			MaxPageSize:       getEnvInt("MAX_PAGE_SIZE", 1000),
			DefaultQueryLimit: getEnvInt("DEFAULT_QUERY_LIMIT", 100),
			MaxQueryLimit:     getEnvInt("MAX_QUERY_LIMIT", 10000),
		},
		Pipeline: PipelineConfig{
			RawDataDir:     getEnv("RAW_DATA_DIR", "data/raw"),
			TripFile:       getEnv("TRIP_FILE", "yellow_tripdata.csv"),
			ZoneLookupFile: getEnv("ZONE_LOOKUP_FILE", "taxi_zone_lookup.csv"),
			SeedBatchSize:  getEnvInt("SEED_BATCH_SIZE", 5000),
		},
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Analytics.DefaultK <= 0 {
		return nil, errors.New("invalid analytics default k")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}

	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
