package catalog

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Customers: []model.Customer{
			{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
			{ID: uuid.New(), FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		},
		Products: []model.Product{
			{ID: uuid.New(), Name: "Keyboard", Price: decimal.RequireFromString("49.90"), Stock: 10},
			{ID: uuid.New(), Name: "Mouse", Price: decimal.RequireFromString("19.90"), Stock: 0},
		},
	}
}

// gzipLines compresses lines joined by newlines.
func gzipLines(t *testing.T, lines ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	_, err := gzipWriter.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, gzipWriter.Close())

	return buf.Bytes()
}

// writeCatalogFile writes snapshot as a catalogue file in a temp dir and returns its path.
func writeCatalogFile(t *testing.T, filename string, snapshot *Snapshot) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), filename)
	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, Write(file, snapshot))

	return filePath
}
