package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr            string
	Port                  string
	DatabasePath          string
	DatabaseLogLevel      string
	SessionSecret         string
	GinMode               string
	Location              *time.Location
	DefaultUserID         string
	DefaultLanguage       string
	ReverseXPOnUncomplete bool
	MetricsEnabled        bool
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := envOrDefault("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:            listenAddr,
		Port:                  port,
		DatabasePath:          envOrDefault("DATABASE_PATH", "habitspark.db"),
		DatabaseLogLevel:      envOrDefault("DB_LOG_LEVEL", "warn"),
		SessionSecret:         envOrDefault("SESSION_SECRET", "habitspark-dev-secret"),
		GinMode:               envOrDefault("GIN_MODE", "release"),
		Location:              loadLocation(os.Getenv("TIMEZONE")),
		DefaultUserID:         envOrDefault("DEFAULT_USER_ID", "local_user"),
		DefaultLanguage:       envOrDefault("DEFAULT_LANGUAGE", "fr"),
		ReverseXPOnUncomplete: envBool("REVERSE_XP_ON_UNCOMPLETE", false),
		MetricsEnabled:        envBool("METRICS_ENABLED", true),
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[config] ignoring invalid %s=%q: %v", key, value, err)
		return fallback
	}
	return parsed
}

// loadLocation 解析规范时区，非法值回退到 UTC
func loadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[config] unknown TIMEZONE %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}
