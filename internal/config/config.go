package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Engine    EngineConfig    `mapstructure:"engine"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// EngineConfig 目标引擎的默认旋钮，用户可在运行时通过配置接口覆盖
type EngineConfig struct {
	PreferredDailyLoad  int     `mapstructure:"preferred_daily_load"`
	RevisionIntensity   float64 `mapstructure:"revision_intensity"`
	SyncIntervalMinutes int     `mapstructure:"sync_interval_minutes"`
	AllowAutoAdjustment bool    `mapstructure:"allow_auto_adjustment"`
	ForecastEnabled     bool    `mapstructure:"forecast_enabled"`
	StreakProtection    bool    `mapstructure:"streak_protection"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("STACKWISE")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Database
	viper.BindEnv("database.path", "DATABASE_PATH")

	// Engine
	viper.BindEnv("engine.preferred_daily_load", "ENGINE_DAILY_LOAD")
	viper.BindEnv("engine.revision_intensity", "ENGINE_REVISION_INTENSITY")
	viper.BindEnv("engine.sync_interval_minutes", "ENGINE_SYNC_INTERVAL")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 引擎旋钮兜底默认值
	if cfg.Engine.PreferredDailyLoad <= 0 {
		cfg.Engine.PreferredDailyLoad = 5
	}
	if cfg.Engine.RevisionIntensity <= 0 || cfg.Engine.RevisionIntensity >= 1 {
		cfg.Engine.RevisionIntensity = 0.3
	}
	if cfg.Engine.SyncIntervalMinutes <= 0 {
		cfg.Engine.SyncIntervalMinutes = 60
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/stackwise.db"
	}

	if cfg.Server.Port == "" {
		return nil, fmt.Errorf("server.port is required")
	}

	return &cfg, nil
}
