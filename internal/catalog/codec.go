package catalog

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// record is one line of a catalogue file. Fields not used by Type are left empty.
type record struct {
	Type      string          `json:"type"`
	ID        uuid.UUID       `json:"id"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Email     string          `json:"email,omitempty"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price,omitzero"`
	Stock     int             `json:"stock,omitempty"`
}

const cancelCheckInterval = 10_000

// decode reads gzipped JSON-lines records from r. Blank lines are skipped.
func decode(ctx context.Context, r io.Reader) (*Snapshot, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	snapshot := &Snapshot{}

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("line %d: invalid record: %w", lineNo, err)
		}

		if err := rec.addTo(snapshot); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}

	return snapshot, nil
}

func (r *record) addTo(s *Snapshot) error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%s record without id", r.Type)
	}

	switch r.Type {
	case RecordCustomer:
		if r.FirstName == "" || r.LastName == "" || r.Email == "" {
			return fmt.Errorf("customer %s: first name, last name and email are required", r.ID)
		}
		s.Customers = append(s.Customers, model.Customer{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		})
	case RecordProduct:
		if r.Name == "" {
			return fmt.Errorf("product %s: name is required", r.ID)
		}
		if r.Price.IsNegative() {
			return fmt.Errorf("product %s: negative price %s", r.ID, r.Price)
		}
		if r.Stock < 0 {
			return fmt.Errorf("product %s: negative stock %d", r.ID, r.Stock)
		}
		s.Products = append(s.Products, model.Product{
			ID:    r.ID,
			Name:  r.Name,
			Price: r.Price,
			Stock: r.Stock,
		})
	default:
		return fmt.Errorf("unknown record type %q", r.Type)
	}

	return nil
}

// Write encodes snapshot as a gzipped JSON-lines catalogue, customers first.
func Write(w io.Writer, snapshot *Snapshot) error {
	gzipWriter := gzip.NewWriter(w)
	encoder := json.NewEncoder(gzipWriter)

	for _, c := range snapshot.Customers {
		rec := record{
			Type:      RecordCustomer,
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
		}
		if err := encoder.Encode(rec); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode customer %s: %w", c.ID, err)
		}
	}

	for _, p := range snapshot.Products {
		rec := record{
			Type:  RecordProduct,
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Stock: p.Stock,
		}
		if err := encoder.Encode(rec); err != nil {
			gzipWriter.Close()
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}

	return nil
}
