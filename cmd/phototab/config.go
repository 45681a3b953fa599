package main

import (
	"errors"
	"log/slog"
)

// Config holds every runtime knob of the compression job. Values are read
// from PHOTOTAB_* environment variables, optionally seeded from a .env file.
type Config struct {
	// Storage backend. DataDir selects the local filesystem store; setting
	// S3Endpoint switches to object storage instead.
	DataDir     string `envconfig:"DATA_DIR" default:"."`
	S3Endpoint  string `envconfig:"S3_ENDPOINT" default:""`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" default:""`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" default:""`
	S3Bucket    string `envconfig:"S3_BUCKET" default:""`
	S3Prefix    string `envconfig:"S3_PREFIX" default:""`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"true"`

	// Input blob names. Table and Features are required. Centroids, when
	// set, supplies precomputed cluster centers and skips k-means.
	Table     string `envconfig:"TABLE" default:""`
	Features  string `envconfig:"FEATURES" default:""`
	Centroids string `envconfig:"CENTROIDS" default:""`

	// Output blob names.
	Templates string `envconfig:"TEMPLATES" default:"templates.ptc"`
	Records   string `envconfig:"RECORDS" default:"recmap.ptc"`
	Chi2      string `envconfig:"CHI2" default:"chi2.ptc"`

	// Compression parameters.
	Clusters           int     `envconfig:"CLUSTERS" default:"4000"`
	Seed               int64   `envconfig:"SEED" default:"1"`
	MaxIter            int     `envconfig:"MAX_ITER" default:"100"`
	MaskThreshold      float64 `envconfig:"MASK_THRESHOLD" default:"1000"`
	Workers            int     `envconfig:"WORKERS" default:"0"`
	NormalizeTemplates bool    `envconfig:"NORMALIZE_TEMPLATES" default:"false"`
	Overwrite          bool    `envconfig:"OVERWRITE" default:"false"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

// Config validation errors
var (
	ErrMissingTable      = errors.New("table cannot be empty")
	ErrMissingFeatures   = errors.New("features cannot be empty")
	ErrMissingBucket     = errors.New("s3_bucket is required when s3_endpoint is set")
	ErrInvalidClusters   = errors.New("clusters must be positive")
	ErrInvalidMaxIter    = errors.New("max_iter must be positive")
	ErrInvalidThreshold  = errors.New("mask_threshold must be non-negative")
	ErrInvalidWorkers    = errors.New("workers must be non-negative")
	ErrInvalidOutputName = errors.New("output names cannot be empty")
	ErrInvalidLogFormat  = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel   = errors.New("log_level must be debug, info, warn, or error")
)

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Table == "" {
		return ErrMissingTable
	}
	if cfg.Features == "" {
		return ErrMissingFeatures
	}
	if cfg.S3Endpoint != "" && cfg.S3Bucket == "" {
		return ErrMissingBucket
	}
	if cfg.Clusters <= 0 {
		return ErrInvalidClusters
	}
	if cfg.MaxIter <= 0 {
		return ErrInvalidMaxIter
	}
	if cfg.MaskThreshold < 0 {
		return ErrInvalidThreshold
	}
	if cfg.Workers < 0 {
		return ErrInvalidWorkers
	}
	if cfg.Templates == "" || cfg.Records == "" || cfg.Chi2 == "" {
		return ErrInvalidOutputName
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps the configured level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}
