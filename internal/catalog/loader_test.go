package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	expected := sampleSnapshot()

	filePath := writeCatalogFile(t, "catalog.jsonl.gz", expected)

	snapshot, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, expected.Customers, snapshot.Customers)
	assert.Len(t, snapshot.Products, 2)
}

func TestFileLoader_Load_EmptyFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := writeCatalogFile(t, "empty.jsonl.gz", &Snapshot{})

	snapshot, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Zero(t, snapshot.Size())
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	snapshot, err := loader.Load(context.Background(), "/nonexistent/path/to/file.gz")

	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.Contains(t, err.Error(), "failed to open catalogue file")
}

func TestFileLoader_Load_InvalidGzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "invalid.gz")
	require.NoError(t, os.WriteFile(filePath, []byte("not a gzip file"), 0644))

	snapshot, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, snapshot)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_ContextCancellation(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	large := &Snapshot{}
	for i := 0; i < 3*cancelCheckInterval; i++ {
		large.Products = append(large.Products, sampleSnapshot().Products[0])
	}
	filePath := writeCatalogFile(t, "large.jsonl.gz", large)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snapshot, err := loader.Load(ctx, filePath)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, snapshot)
}
