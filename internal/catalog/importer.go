package catalog

import (
	"context"
	"fmt"
	"sync"

	"order-service/internal/repository"

	"github.com/rs/zerolog"
)

// Result summarises an import run.
type Result struct {
	Files     int
	Customers int
	Products  int
}

// Importer loads catalogue files and upserts their contents into the database.
type Importer struct {
	loader    Loader
	customers repository.CustomerRepository
	products  repository.ProductRepository
	logger    zerolog.Logger
}

// NewImporter creates a new catalogue importer.
func NewImporter(loader Loader, customers repository.CustomerRepository, products repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:    loader,
		customers: customers,
		products:  products,
		logger:    logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Load reads all files concurrently and merges them in the order given, so a record in a
// later file overrides the same ID in an earlier one.
func (im *Importer) Load(ctx context.Context, filePaths []string) (*Snapshot, error) {
	type loadResult struct {
		index    int
		snapshot *Snapshot
		err      error
	}

	resultChan := make(chan loadResult, len(filePaths))
	var wg sync.WaitGroup

	for i, filePath := range filePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			snapshot, err := im.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, snapshot: snapshot, err: err}
		}(i, filePath)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(filePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := &Snapshot{}
	for i, result := range results {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", filePaths[i]).
				Msg("failed to load catalogue file")
			return nil, fmt.Errorf("failed to load catalogue file %s: %w", filePaths[i], result.err)
		}
		merged.Merge(result.snapshot)
	}

	return merged, nil
}

// Import loads filePaths and upserts customers, then products.
func (im *Importer) Import(ctx context.Context, filePaths []string) (*Result, error) {
	if len(filePaths) == 0 {
		return nil, fmt.Errorf("no catalogue files given")
	}

	snapshot, err := im.Load(ctx, filePaths)
	if err != nil {
		return nil, err
	}

	if err := im.customers.Upsert(ctx, snapshot.Customers); err != nil {
		im.logger.Error().Err(err).Int("count", len(snapshot.Customers)).Msg("failed to import customers")
		return nil, fmt.Errorf("failed to import customers: %w", err)
	}

	if err := im.products.Upsert(ctx, snapshot.Products); err != nil {
		im.logger.Error().Err(err).Int("count", len(snapshot.Products)).Msg("failed to import products")
		return nil, fmt.Errorf("failed to import products: %w", err)
	}

	result := &Result{
		Files:     len(filePaths),
		Customers: len(snapshot.Customers),
		Products:  len(snapshot.Products),
	}

	im.logger.Info().
		Int("files", result.Files).
		Int("customers", result.Customers).
		Int("products", result.Products).
		Msg("catalogue imported successfully")

	return result, nil
}
