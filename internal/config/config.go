package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	JWTRefreshSecret  string
	ChannelBase       string
	ExamViewCacheTTL  time.Duration
	DashboardCacheTTL time.Duration
	ChatPollLimit     int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ACADEMY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Academy API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("channel.base", "academy")
	v.SetDefault("cache.exam_view_ttl", "10m")
	v.SetDefault("cache.dashboard_ttl", "30s")
	v.SetDefault("chat.poll_limit", 50)

	examTTL, err := parseTTL(v.GetString("cache.exam_view_ttl"), 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid exam view cache ttl: %w", err)
	}

	dashboardTTL, err := parseTTL(v.GetString("cache.dashboard_ttl"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTRefreshSecret:  v.GetString("jwt.refresh_secret"),
		ChannelBase:       v.GetString("channel.base"),
		ExamViewCacheTTL:  examTTL,
		DashboardCacheTTL: dashboardTTL,
		ChatPollLimit:     v.GetInt("chat.poll_limit"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.ChatPollLimit <= 0 {
		cfg.ChatPollLimit = 50
	}

	return cfg, nil
}

func parseTTL(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}
