package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Url string `envconfig:"URL"`
}

// LogConfig drives the structured logger.
type LogConfig struct {
	Level      int    `envconfig:"LEVEL" default:"0"` // slog levels: -4 debug, 0 info
	Format     string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"reconcile"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// SourceConfig selects where settlement files are picked up from.
type SourceConfig struct {
	Kind      string `envconfig:"KIND" default:"local" validate:"oneof=local sftp"`
	Dir       string `envconfig:"DIR" default:"./incoming"`
	Host      string `envconfig:"HOST" validate:"required_if=Kind sftp"`
	Port      int    `envconfig:"PORT" default:"22" validate:"min=1,max=65535"`
	User      string `envconfig:"USER" validate:"required_if=Kind sftp"`
	Password  string `envconfig:"PASSWORD"`
	RemoteDir string `envconfig:"REMOTE_DIR" default:"."`
}

// EnrichmentConfig drives the customer lookup adapter.
type EnrichmentConfig struct {
	BaseUrl     string        `envconfig:"BASE_URL"`
	ApiKey      string        `envconfig:"API_KEY"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"5s"`
	CacheTTL    time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	CachePrefix string        `envconfig:"CACHE_PREFIX" default:"enr:party:"`
	BatchLimit  int           `envconfig:"BATCH_LIMIT" default:"500"`
}

// SchedulerConfig drives the daily ingestion daemon.
type SchedulerConfig struct {
	RunAt    string `envconfig:"RUN_AT" default:"06:30" validate:"datetime=15:04"` // local wall-clock HH:MM
	Disabled bool   `envconfig:"DISABLED"`
}

type AppConfig struct {
	Env        string           `envconfig:"APP_ENV" default:"development"`
	Actor      string           `envconfig:"APP_ACTOR" default:"reconcile"`
	Log        LogConfig        `envconfig:"LOG"`
	DB         DBConfig         `envconfig:"DATABASE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Source     SourceConfig     `envconfig:"SOURCE"`
	Enrichment EnrichmentConfig `envconfig:"ENRICHMENT"`
	Scheduler  SchedulerConfig  `envconfig:"SCHEDULER"`
}

func maskSecret(s string) string {
	if len(s) <= 6 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-4:]
}

func LoadAppConfig(logger *slog.Logger, envFilePath ...string) (*AppConfig, error) {
	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		logger.Warn("No .env file found or specified, using system environment variables")
	} else {
		logger.Info("Environment variables loaded from .env file")
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("App config loaded",
		"env", cfg.Env,
		"source_kind", cfg.Source.Kind,
		"enrichment_base_url", cfg.Enrichment.BaseUrl,
		"enrichment_api_key", maskSecret(cfg.Enrichment.ApiKey),
		"scheduler_run_at", cfg.Scheduler.RunAt,
	)
	return &cfg, nil
}
