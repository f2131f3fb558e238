package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	URI    string
	DBName string
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// AdminConfig seeds an administrator account at start-up when Username is set.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type LogConfig struct {
	Level  string
	File   string
	Stdout bool
}

// ReminderConfig controls the due-date reminder scanner.
type ReminderConfig struct {
	Enabled  bool
	Window   time.Duration
	Interval time.Duration
}

type Config struct {
	ServerPort   string
	CORSOrigin   string
	JWTSecret    string
	JWTTTL       time.Duration
	MaxUploadMB  int64
	CassandraDB  string
	Mongo        MongoConfig
	SMTP         SMTPConfig
	Log          LogConfig
	Reminders    ReminderConfig
	Admin        AdminConfig
	EnvFileFound bool
}

// Load reads .env (when present) and the process environment once.
func Load() (*Config, error) {
	envFileFound := godotenv.Load(".env") == nil

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "*"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTTTL:       getEnvDuration("JWT_TTL", 24*time.Hour),
		MaxUploadMB:  int64(getEnvInt("MAX_UPLOAD_MB", 10)),
		CassandraDB:  os.Getenv("CASS_DB"),
		EnvFileFound: envFileFound,
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB_NAME", "task_manager"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnv("SMTP_PORT", "587"),
			From:     os.Getenv("SMTP_FROM"),
			Password: os.Getenv("EMAIL_PASSWORD"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", "logs/task-manager.log"),
			Stdout: getEnvBool("LOG_STDOUT", true),
		},
		Admin: AdminConfig{
			Username: os.Getenv("ADMIN_USERNAME"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Reminders: ReminderConfig{
			Enabled:  getEnvBool("REMINDERS_ENABLED", true),
			Window:   time.Duration(getEnvInt("REMINDER_WINDOW_HOURS", 24)) * time.Hour,
			Interval: time.Duration(getEnvInt("REMINDER_CHECK_INTERVAL_MINUTES", 60)) * time.Minute,
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.Reminders.Window <= 0 {
		return nil, fmt.Errorf("REMINDER_WINDOW_HOURS must be positive")
	}
	if cfg.Reminders.Interval <= 0 {
		return nil, fmt.Errorf("REMINDER_CHECK_INTERVAL_MINUTES must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
