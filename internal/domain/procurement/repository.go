package procurement

import (
	"context"

	"github.com/google/uuid"
)

// RequestRepository defines the interface for purchase request persistence
type RequestRepository interface {
	// FindByID finds a request by ID. Fails with NOT_FOUND when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// FindAll returns requests matching the filter, newest first, with the total count
	FindAll(ctx context.Context, filter RequestFilter) ([]*Request, int64, error)

	// Create persists a new request
	Create(ctx context.Context, request *Request) error

	// Update persists a mutated request. The stored version must equal
	// request.Version-1, otherwise it fails with CONCURRENCY_CONFLICT.
	Update(ctx context.Context, request *Request) error

	// Delete permanently removes a request. Fails with NOT_FOUND when absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats aggregates counts per status and approved spend for the filter
	Stats(ctx context.Context, filter RequestFilter) (*RequestStats, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by ID. Fails with NOT_FOUND when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindAll returns vendors ordered by name with the total count
	FindAll(ctx context.Context, filter VendorFilter) ([]*Vendor, int64, error)

	// ExistsByName checks whether a vendor with the name exists, case-insensitively
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Create persists a new vendor
	Create(ctx context.Context, vendor *Vendor) error

	// Update persists changes, checking the version like RequestRepository.Update
	Update(ctx context.Context, vendor *Vendor) error
}

// VendorFilter contains filter options for listing vendors
type VendorFilter struct {
	Keyword    string
	ActiveOnly bool
	Page       int
	PageSize   int
}
