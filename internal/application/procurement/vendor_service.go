package procurement

import (
	"context"
	"strings"

	"github.com/google/uuid"
	identityapp "github.com/procura/backend/internal/application/identity"
	"github.com/procura/backend/internal/domain/identity"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/procura/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// VendorService manages the vendors requests may reference.
// Reads are open to any caller; writes need an admin role.
type VendorService struct {
	vendorRepo procurement.VendorRepository
	guard      *identityapp.Guard
	logger     *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo procurement.VendorRepository, guard *identityapp.Guard, logger *zap.Logger) *VendorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = identityapp.NewGuard(logger)
	}
	return &VendorService{
		vendorRepo: vendorRepo,
		guard:      guard,
		logger:     logger.Named("vendor_service"),
	}
}

// Create adds a vendor. Names are unique ignoring case.
func (s *VendorService) Create(ctx context.Context, p *identity.Principal, in VendorInput) (*VendorResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "create_vendor"); err != nil {
		return nil, err
	}
	exists, err := s.vendorRepo.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A vendor with this name already exists")
	}

	vendor, err := procurement.NewVendor(in.toDetails())
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.logger.Info("Vendor created",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("name", vendor.Name),
		zap.String("actor_id", p.ID.String()),
	)
	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// Update replaces a vendor's editable fields
func (s *VendorService) Update(ctx context.Context, p *identity.Principal, id uuid.UUID, in VendorInput) (*VendorResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "update_vendor"); err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !equalFoldTrim(vendor.Name, in.Name) {
		exists, err := s.vendorRepo.ExistsByName(ctx, in.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A vendor with this name already exists")
		}
	}
	if err := vendor.Update(in.toDetails()); err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// Deactivate hides a vendor from new requests. Requests already pointing at
// it keep the reference.
func (s *VendorService) Deactivate(ctx context.Context, p *identity.Principal, id uuid.UUID) (*VendorResponse, error) {
	if err := s.guard.Require(ctx, p, identity.AdminRoles, "deactivate_vendor"); err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := vendor.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}

	s.logger.Info("Vendor deactivated",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("actor_id", p.ID.String()),
	)
	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// Get returns one vendor
func (s *VendorService) Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*VendorResponse, error) {
	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToVendorResponse(vendor)
	return &resp, nil
}

// List returns vendors ordered by name
func (s *VendorService) List(ctx context.Context, p *identity.Principal, q ListVendorsQuery) (*VendorListResponse, error) {
	if err := identityapp.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	page, pageSize := shared.NormalizePage(q.Page, q.PageSize)
	vendors, total, err := s.vendorRepo.FindAll(ctx, procurement.VendorFilter{
		Keyword:    q.Keyword,
		ActiveOnly: q.ActiveOnly,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]VendorResponse, len(vendors))
	for i, v := range vendors {
		items[i] = ToVendorResponse(v)
	}
	return &VendorListResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
