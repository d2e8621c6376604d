package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Driver          string // sqlite | postgres
	Source          string // file path / DSN
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

type ServerConfig struct {
	Port string
	Env  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type LogConfig struct {
	Level string
}

type CORSConfig struct {
	AllowOrigins []string
}

// AdminConfig seeds the first admin account when both fields are set
type AdminConfig struct {
	Email    string
	Password string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	FrontendURL string
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	Log         LogConfig
	CORS        CORSConfig
	Admin       AdminConfig
}

// Load reads an optional .env file, then the environment
func Load() *Config {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("SERVICE_NAME", "near-expiry-api"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Source:          getEnv("DB_SOURCE", "near_expiry.db"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "near_expiry_dev_secret"),
			TTL:    getEnvAsDuration("JWT_EXPIRE", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvAsLogLevel(key string, fallback logger.LogLevel) logger.LogLevel {
	switch getEnv(key, "") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return fallback
	}
}
