package catalog

import (
	"context"

	"order-service/internal/model"

	"github.com/google/uuid"
)

// Record types found in a catalogue file.
const (
	RecordCustomer = "customer"
	RecordProduct  = "product"
)

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a gzipped JSON-lines catalogue file and returns its contents.
	Load(ctx context.Context, filePath string) (*Snapshot, error)
}

// Snapshot holds the customers and products read from one or more catalogue files.
type Snapshot struct {
	Customers []model.Customer
	Products  []model.Product
}

// Merge appends other to s. A record whose ID is already present replaces the earlier one in place.
func (s *Snapshot) Merge(other *Snapshot) {
	if other == nil {
		return
	}

	customerIdx := make(map[uuid.UUID]int, len(s.Customers))
	for i, c := range s.Customers {
		customerIdx[c.ID] = i
	}
	for _, c := range other.Customers {
		if i, ok := customerIdx[c.ID]; ok {
			s.Customers[i] = c
			continue
		}
		customerIdx[c.ID] = len(s.Customers)
		s.Customers = append(s.Customers, c)
	}

	productIdx := make(map[uuid.UUID]int, len(s.Products))
	for i, p := range s.Products {
		productIdx[p.ID] = i
	}
	for _, p := range other.Products {
		if i, ok := productIdx[p.ID]; ok {
			s.Products[i] = p
			continue
		}
		productIdx[p.ID] = len(s.Products)
		s.Products = append(s.Products, p)
	}
}

// Size returns the total number of records in the snapshot.
func (s *Snapshot) Size() int {
	return len(s.Customers) + len(s.Products)
}
