package config

import (
	"fmt"
	"os"
)

type AppEnv struct {
	LogLvl string

	PgHost     string
	PgPort     string
	PgUser     string
	PgPassword string
	PgDbName   string
	SSLMode    string
	TimeZone   string

	RedisAddr     string
	RedisPassword string

	JwtSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

func GetEnvironment() (env AppEnv, err error) {
	env = AppEnv{
		LogLvl:        getEnv("LOG_LEVEL", "debug"),
		PgHost:        getEnv("POSTGRES_HOST", ""),
		PgPort:        getEnv("POSTGRES_PORT", ""),
		PgUser:        getEnv("POSTGRES_USER", ""),
		PgPassword:    getEnv("POSTGRES_PASSWORD", ""),
		PgDbName:      getEnv("POSTGRES_DB", ""),
		SSLMode:       getEnv("POSTGRES_SSL_MODE", "disable"),
		TimeZone:      getEnv("POSTGRES_TIMEZONE", "Africa/Nairobi"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		JwtSecret:     getEnv("JWT_SECRET", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "465"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:      getEnv("SMTP_FROM", ""),
	}

	if env.PgHost == "" || env.PgPort == "" || env.PgUser == "" ||
		env.PgPassword == "" || env.PgDbName == "" {
		return env, fmt.Errorf("incorrect environment params")
	}

	if env.JwtSecret == "" {
		return env, fmt.Errorf("incorrect environment params")
	}

	return env, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}
