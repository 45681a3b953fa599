package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	minioclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/phototab/phototab"
	"github.com/phototab/phototab/blobstore"
	miniostore "github.com/phototab/phototab/blobstore/minio"
)

func main() {
	if err := run(); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PHOTOTAB", &cfg); err != nil {
		return err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return err
	}

	logger, err := buildLogger(&cfg)
	if err != nil {
		return err
	}

	store, err := buildStore(&cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []phototab.Option{
		phototab.WithLogger(logger),
		phototab.WithClusters(cfg.Clusters),
		phototab.WithSeed(cfg.Seed),
		phototab.WithMaxIter(cfg.MaxIter),
		phototab.WithMaskThreshold(float32(cfg.MaskThreshold)),
		phototab.WithOutputNames(phototab.OutputNames{
			Templates: cfg.Templates,
			Records:   cfg.Records,
			Chi2:      cfg.Chi2,
		}),
	}
	if cfg.Workers > 0 {
		opts = append(opts, phototab.WithWorkers(cfg.Workers))
	}
	if cfg.NormalizeTemplates {
		opts = append(opts, phototab.WithNormalizedTemplates())
	}
	if cfg.Overwrite {
		opts = append(opts, phototab.WithOverwrite())
	}

	stats, err := phototab.New(opts...).Run(ctx, store, phototab.InputNames{
		Table:     cfg.Table,
		Features:  cfg.Features,
		Centroids: cfg.Centroids,
	})
	if err != nil {
		return err
	}

	logger.Info("compression finished",
		"bins", stats.Bins,
		"clusters", stats.Clusters,
		"empty_templates", stats.EmptyTemplates,
		"zero_marginal_bins", stats.ZeroMarginalBins,
		"raw_bytes", stats.RawBytes,
		"compressed_bytes", stats.CompressedBytes,
		"ratio", stats.Ratio(),
	)
	return nil
}

func buildLogger(cfg *Config) (*phototab.Logger, error) {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return phototab.NewJSONLogger(level), nil
	}
	return phototab.NewTextLogger(level), nil
}

func buildStore(cfg *Config) (blobstore.Store, error) {
	if cfg.S3Endpoint == "" {
		return blobstore.NewLocalStore(cfg.DataDir), nil
	}
	client, err := minioclient.New(cfg.S3Endpoint, &minioclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return miniostore.NewStore(client, cfg.S3Bucket, cfg.S3Prefix), nil
}
