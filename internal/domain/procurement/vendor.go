package procurement

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/shared"
)

// Vendor is a supplier on file that requests may reference
type Vendor struct {
	shared.BaseAggregateRoot
	Name         string
	Website      string
	ContactEmail string
	Category     string
	Active       bool
}

// VendorDetails are the editable vendor fields
type VendorDetails struct {
	Name         string
	Website      string
	ContactEmail string
	Category     string
}

// NewVendor creates an active vendor
func NewVendor(details VendorDetails) (*Vendor, error) {
	v := &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Active:            true,
	}
	if err := v.apply(details); err != nil {
		return nil, err
	}
	return v, nil
}

// Update replaces the editable fields
func (v *Vendor) Update(details VendorDetails) error {
	if err := v.apply(details); err != nil {
		return err
	}
	v.Touch()
	v.IncrementVersion()
	return nil
}

// Deactivate hides the vendor from new requests. Existing references stay valid.
func (v *Vendor) Deactivate() error {
	if !v.Active {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Vendor is already inactive")
	}
	v.Active = false
	v.Touch()
	v.IncrementVersion()
	return nil
}

func (v *Vendor) apply(d VendorDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewBadRequestError("Vendor name is required")
	}
	if len(name) > 200 {
		return shared.NewBadRequestError("Vendor name cannot exceed 200 characters")
	}
	website := strings.TrimSpace(d.Website)
	if website != "" {
		u, err := url.Parse(website)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return shared.NewBadRequestError("Vendor website must be an http(s) URL")
		}
	}
	email := strings.ToLower(strings.TrimSpace(d.ContactEmail))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewBadRequestError("Vendor contact email is invalid")
		}
	}

	v.Name = name
	v.Website = website
	v.ContactEmail = email
	v.Category = strings.TrimSpace(d.Category)
	return nil
}

// VendorRef returns a pointer to a copy of id, or nil for uuid.Nil
func VendorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
