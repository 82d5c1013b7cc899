package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"order-service/internal/catalog"
	"order-service/internal/config"
	"order-service/internal/database"
	"order-service/internal/events"
	"order-service/internal/model"
	"order-service/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the service schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Fixture is the catalogue seeded by SeedCatalog.
type Fixture struct {
	Ada, Grace           model.Customer
	Keyboard, Mouse, Hub model.Product
}

// NewFixture builds a fresh catalogue with random IDs.
func NewFixture() *Fixture {
	return &Fixture{
		Ada:      model.Customer{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Grace:    model.Customer{ID: uuid.New(), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		Keyboard: model.Product{ID: uuid.New(), Name: "Mechanical Keyboard", Price: decimal.RequireFromString("89.90"), Stock: 5},
		Mouse:    model.Product{ID: uuid.New(), Name: "Wireless Mouse", Price: decimal.RequireFromString("24.50"), Stock: 10},
		Hub:      model.Product{ID: uuid.New(), Name: "USB-C Hub", Price: decimal.RequireFromString("39.99"), Stock: 0},
	}
}

// Snapshot returns the fixture as a catalogue snapshot.
func (f *Fixture) Snapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Customers: []model.Customer{f.Ada, f.Grace},
		Products:  []model.Product{f.Keyboard, f.Mouse, f.Hub},
	}
}

// SeedCatalog writes the fixture to a gzipped catalogue file and imports it the way cmd/seed does.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool, fixture *Fixture) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.jsonl.gz")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create catalogue file: %v", err)
	}
	if err := catalog.Write(file, fixture.Snapshot()); err != nil {
		file.Close()
		t.Fatalf("failed to write catalogue: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("failed to close catalogue file: %v", err)
	}

	logger := zerolog.Nop()
	importer := catalog.NewImporter(
		catalog.NewFileLoader(logger),
		repository.NewCustomerRepository(pool, logger),
		repository.NewProductRepository(pool, logger),
		logger,
	)

	if _, err := importer.Import(context.Background(), []string{path}); err != nil {
		t.Fatalf("failed to import catalogue: %v", err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products", "customers"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// recordingPublisher collects published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
