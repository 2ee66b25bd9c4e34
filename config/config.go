package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	PostgresURI string
	RedisURI    string

	ComponentsFile string
	CheckSchedule  string
	RollupSchedule string
	CheckTimeout   time.Duration
	RetentionDays  int

	// Alerting
	ResendAPIKey string
	AlertEmail   string
	EmailFrom    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	// Requests per second allowed on the manual trigger endpoints.
	ManualTriggerRPS float64
}

var AppConfig *Config

func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warn loading .env file")
	}

	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() *Config {
	return &Config{
		Port:             getEnv("PORT", "8081"),
		PostgresURI:      getEnv("POSTGRES_URI", "postgres://localhost:5432/status?sslmode=disable"),
		RedisURI:         getEnv("REDIS_URI", "redis://localhost:6379/0"),
		ComponentsFile:   getEnv("COMPONENTS_FILE", ""),
		CheckSchedule:    getEnv("CHECK_SCHEDULE", "@every 5m"),
		RollupSchedule:   getEnv("ROLLUP_SCHEDULE", "5 0 * * *"),
		CheckTimeout:     getEnvDuration("CHECK_TIMEOUT", 10*time.Second),
		RetentionDays:    getEnvInt("HISTORY_RETENTION_DAYS", 90),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		AlertEmail:       getEnv("ALERT_EMAIL", "alerts@example.com"),
		EmailFrom:        getEnv("EMAIL_FROM", "Status Monitor <status@example.com>"),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		ManualTriggerRPS: getEnvFloat("MANUAL_TRIGGER_RPS", 0.2),
	}
}

func getEnv(key string, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[CONFIG] Invalid integer for %s=%q, using %d", key, v, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[CONFIG] Invalid number for %s=%q, using %v", key, v, defaultValue)
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("10s") or plain milliseconds ("10000").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("[CONFIG] Invalid duration for %s=%q, using %s", key, v, defaultValue)
	return defaultValue
}
