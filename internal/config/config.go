// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ProbeConfig struct {
	// Binary is the path to the external probing tool.
	Binary string `yaml:"binary"`
	// ExtraArgs are prepended to every invocation (e.g. --no-color).
	ExtraArgs []string `yaml:"extra_args"`
	// SafetyMultiplier scales the per-site timeout into the batch-level
	// wall-clock ceiling.
	SafetyMultiplier int `yaml:"safety_multiplier"`
	// MaxConcurrent bounds the number of probe processes running at once.
	MaxConcurrent int `yaml:"max_concurrent"`
	// QueueSize bounds how many accepted jobs may wait for a worker.
	QueueSize int `yaml:"queue_size"`
}

type LimitsConfig struct {
	Cooldown time.Duration `yaml:"cooldown"`
	// JobRetention is how long terminal jobs stay visible to status polls
	// before the registry evicts them.
	JobRetention time.Duration `yaml:"job_retention"`
}

type StorageConfig struct {
	HistoryDir   string `yaml:"history_dir"`
	ArtifactsDir string `yaml:"artifacts_dir"`
	// MaxRecordsPerOwner caps stored results per owner; oldest pruned first.
	MaxRecordsPerOwner int `yaml:"max_records_per_owner"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Redis   RedisConfig   `yaml:"redis"`
	Probe   ProbeConfig   `yaml:"probe"`
	Limits  LimitsConfig  `yaml:"limits"`
	Storage StorageConfig `yaml:"storage"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	// Optional .env for secrets that should not live in the yaml file.
	_ = godotenv.Load()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// env overrides
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("PROBE_BINARY"); v != "" {
		cfg.Probe.Binary = v
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Probe.Binary == "" {
		cfg.Probe.Binary = "sherlock"
	}
	if cfg.Probe.SafetyMultiplier <= 0 {
		cfg.Probe.SafetyMultiplier = 3
	}
	if cfg.Probe.MaxConcurrent <= 0 {
		cfg.Probe.MaxConcurrent = 4
	}
	if cfg.Probe.QueueSize <= 0 {
		cfg.Probe.QueueSize = 64
	}
	if cfg.Limits.Cooldown <= 0 {
		cfg.Limits.Cooldown = 60 * time.Second
	}
	if cfg.Limits.JobRetention <= 0 {
		cfg.Limits.JobRetention = time.Hour
	}
	if cfg.Storage.HistoryDir == "" {
		cfg.Storage.HistoryDir = "data/history"
	}
	if cfg.Storage.ArtifactsDir == "" {
		cfg.Storage.ArtifactsDir = "data/results"
	}
	if cfg.Storage.MaxRecordsPerOwner <= 0 {
		cfg.Storage.MaxRecordsPerOwner = 50
	}

	// Minimal validation
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
