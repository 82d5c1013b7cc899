package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"order-service/internal/catalog"
	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// namespace keeps generated IDs stable between runs, so sample requests keep working after a re-seed.
var namespace = uuid.MustParse("6f1c1d38-5d0e-4a53-9f0b-2a1e6c7b8d90")

// gencatalog writes a sample gzipped JSON-lines catalogue for local development.
func main() {
	out := flag.String("out", "data/catalog/catalog.jsonl.gz", "output file")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create directory")
	}

	snapshot := sampleCatalog()
	if err := writeFile(*out, snapshot); err != nil {
		logger.Fatal().Err(err).Str("file", *out).Msg("failed to write catalogue")
	}

	logger.Info().
		Str("file", *out).
		Int("customers", len(snapshot.Customers)).
		Int("products", len(snapshot.Products)).
		Msg("sample catalogue created")

	for _, c := range snapshot.Customers {
		fmt.Printf("customer %s  %s\n", c.ID, c.FullName())
	}
	for _, p := range snapshot.Products {
		fmt.Printf("product  %s  %-20s %8s  stock %d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
	}
}

func sampleCatalog() *catalog.Snapshot {
	customers := []struct{ first, last string }{
		{"Ada", "Lovelace"},
		{"Grace", "Hopper"},
		{"Alan", "Turing"},
	}

	products := []struct {
		name  string
		price string
		stock int
	}{
		{"Mechanical Keyboard", "89.90", 25},
		{"Wireless Mouse", "24.50", 100},
		{"27in Monitor", "249.00", 10},
		{"USB-C Hub", "39.99", 0},
		{"Laptop Stand", "45.00", 3},
	}

	snapshot := &catalog.Snapshot{}
	for _, c := range customers {
		snapshot.Customers = append(snapshot.Customers, model.Customer{
			ID:        uuid.NewSHA1(namespace, []byte("customer:"+c.first+" "+c.last)),
			FirstName: c.first,
			LastName:  c.last,
			Email:     fmt.Sprintf("%s.%s@example.com", strings.ToLower(c.first), strings.ToLower(c.last)),
		})
	}
	for _, p := range products {
		snapshot.Products = append(snapshot.Products, model.Product{
			ID:    uuid.NewSHA1(namespace, []byte("product:"+p.name)),
			Name:  p.name,
			Price: decimal.RequireFromString(p.price),
			Stock: p.stock,
		})
	}

	return snapshot
}

func writeFile(path string, snapshot *catalog.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := catalog.Write(file, snapshot); err != nil {
		return err
	}

	return file.Close()
}
