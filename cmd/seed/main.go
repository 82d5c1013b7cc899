package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"order-service/internal/catalog"
	"order-service/internal/config"
	"order-service/internal/database"
	"order-service/internal/repository"
)

// seed imports customers and products from gzipped catalogue files into PostgreSQL.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	files := flag.String("files", "", "comma-separated catalogue files (defaults to CATALOG_FILES)")
	applySchema := flag.Bool("apply-schema", false, "create missing tables before importing")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	paths := cfg.Catalog.Files
	if *files != "" {
		paths = nil
		for _, p := range strings.Split(*files, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no catalogue files given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if *applySchema {
		if err := database.ApplySchema(ctx, pool); err != nil {
			return err
		}
		logger.Info().Msg("schema applied")
	}

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		s3Loader, err = catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
			s3Loader = nil
		}
	}
	loader := catalog.NewFallbackLoader(s3Loader, catalog.NewFileLoader(logger), cfg.S3.Prefix, cfg.S3.Enabled, logger)

	importer := catalog.NewImporter(
		loader,
		repository.NewCustomerRepository(pool, logger),
		repository.NewProductRepository(pool, logger),
		logger,
	)

	result, err := importer.Import(ctx, paths)
	if err != nil {
		return fmt.Errorf("catalogue import failed: %w", err)
	}

	logger.Info().
		Int("files", result.Files).
		Int("customers", result.Customers).
		Int("products", result.Products).
		Msg("catalogue imported")

	return nil
}
