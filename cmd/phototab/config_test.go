package main

import (
	"log/slog"
	"testing"

	"github.com/kelseyhightower/envconfig"
)

func validConfig() Config {
	var cfg Config
	if err := envconfig.Process("PHOTOTAB", &cfg); err != nil {
		panic(err)
	}
	cfg.Table = "table5d.ptc"
	cfg.Features = "features.ptc"
	return cfg
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := validConfig()
	if err := ValidateConfig(&cfg); err != nil {
		t.Errorf("ValidateConfig() error = %v, want nil", err)
	}
}

func TestValidateConfig_MissingTable(t *testing.T) {
	cfg := validConfig()
	cfg.Table = ""
	if err := ValidateConfig(&cfg); err != ErrMissingTable {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrMissingTable)
	}
}

func TestValidateConfig_MissingFeatures(t *testing.T) {
	cfg := validConfig()
	cfg.Features = ""
	if err := ValidateConfig(&cfg); err != ErrMissingFeatures {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrMissingFeatures)
	}
}

func TestValidateConfig_EndpointWithoutBucket(t *testing.T) {
	cfg := validConfig()
	cfg.S3Endpoint = "minio.local:9000"
	if err := ValidateConfig(&cfg); err != ErrMissingBucket {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrMissingBucket)
	}

	cfg.S3Bucket = "tables"
	if err := ValidateConfig(&cfg); err != nil {
		t.Errorf("ValidateConfig() with bucket error = %v, want nil", err)
	}
}

func TestValidateConfig_InvalidClusters(t *testing.T) {
	cfg := validConfig()
	cfg.Clusters = 0
	if err := ValidateConfig(&cfg); err != ErrInvalidClusters {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidClusters)
	}

	cfg.Clusters = -5
	if err := ValidateConfig(&cfg); err != ErrInvalidClusters {
		t.Errorf("ValidateConfig() with negative error = %v, want %v", err, ErrInvalidClusters)
	}
}

func TestValidateConfig_InvalidMaxIter(t *testing.T) {
	cfg := validConfig()
	cfg.MaxIter = 0
	if err := ValidateConfig(&cfg); err != ErrInvalidMaxIter {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidMaxIter)
	}
}

func TestValidateConfig_NegativeThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.MaskThreshold = -1
	if err := ValidateConfig(&cfg); err != ErrInvalidThreshold {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidThreshold)
	}

	// Zero threshold is allowed: it trains on every non-empty bin.
	cfg.MaskThreshold = 0
	if err := ValidateConfig(&cfg); err != nil {
		t.Errorf("ValidateConfig() with zero threshold error = %v, want nil", err)
	}
}

func TestValidateConfig_NegativeWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = -1
	if err := ValidateConfig(&cfg); err != ErrInvalidWorkers {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidWorkers)
	}
}

func TestValidateConfig_EmptyOutputName(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Templates = "" },
		func(c *Config) { c.Records = "" },
		func(c *Config) { c.Chi2 = "" },
	} {
		cfg := validConfig()
		mutate(&cfg)
		if err := ValidateConfig(&cfg); err != ErrInvalidOutputName {
			t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidOutputName)
		}
	}
}

func TestValidateConfig_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.LogFormat = "xml"
	if err := ValidateConfig(&cfg); err != ErrInvalidLogFormat {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidLogFormat)
	}
}

func TestValidateConfig_ValidLogFormats(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		cfg := validConfig()
		cfg.LogFormat = format
		if err := ValidateConfig(&cfg); err != nil {
			t.Errorf("ValidateConfig() with LogFormat=%q error = %v, want nil", format, err)
		}
	}
}

func TestValidateConfig_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "trace"
	if err := ValidateConfig(&cfg); err != ErrInvalidLogLevel {
		t.Errorf("ValidateConfig() error = %v, want %v", err, ErrInvalidLogLevel)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		got, err := ParseLogLevel(name)
		if err != nil {
			t.Errorf("ParseLogLevel(%q) error = %v, want nil", name, err)
		}
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseLogLevel("verbose"); err != ErrInvalidLogLevel {
		t.Errorf("ParseLogLevel(verbose) error = %v, want %v", err, ErrInvalidLogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PHOTOTAB_TABLE", "run42/table5d.ptc.zst")
	t.Setenv("PHOTOTAB_CLUSTERS", "170")
	t.Setenv("PHOTOTAB_NORMALIZE_TEMPLATES", "true")

	var cfg Config
	if err := envconfig.Process("PHOTOTAB", &cfg); err != nil {
		t.Fatalf("envconfig.Process() error = %v", err)
	}

	if cfg.Table != "run42/table5d.ptc.zst" {
		t.Errorf("Table = %q, want %q", cfg.Table, "run42/table5d.ptc.zst")
	}
	if cfg.Clusters != 170 {
		t.Errorf("Clusters = %d, want 170", cfg.Clusters)
	}
	if !cfg.NormalizeTemplates {
		t.Error("NormalizeTemplates = false, want true")
	}
}

func TestEnvDefaults(t *testing.T) {
	var cfg Config
	if err := envconfig.Process("PHOTOTAB_TEST_DEFAULTS", &cfg); err != nil {
		t.Fatalf("envconfig.Process() error = %v", err)
	}

	if cfg.Clusters != 4000 {
		t.Errorf("Clusters = %d, want 4000", cfg.Clusters)
	}
	if cfg.MaskThreshold != 1000 {
		t.Errorf("MaskThreshold = %v, want 1000", cfg.MaskThreshold)
	}
	if cfg.Records != "recmap.ptc" {
		t.Errorf("Records = %q, want %q", cfg.Records, "recmap.ptc")
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
}
