package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procura/backend/internal/domain/procurement"
	"github.com/shopspring/decimal"
)

// PurchaseRequestModel is the persistence model for the Request aggregate.
// The proposed vendor is flattened into nullable columns.
type PurchaseRequestModel struct {
	AggregateModel
	Title                 string                    `gorm:"type:varchar(200);not null"`
	Description           string                    `gorm:"type:text;not null"`
	Cost                  decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Department            procurement.Department    `gorm:"type:varchar(50);not null;index"`
	RequesterID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	VendorID              *uuid.UUID                `gorm:"type:uuid;index"`
	IsNewVendor           bool                      `gorm:"not null;default:false"`
	ProposedVendorName    *string                   `gorm:"type:varchar(200)"`
	ProposedVendorWebsite *string                   `gorm:"type:varchar(500)"`
	ProposedVendorEmail   *string                   `gorm:"type:varchar(200)"`
	CostPerLicense        decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	NumLicenses           int                       `gorm:"not null;default:0"`
	Attachments           []string                  `gorm:"type:jsonb;serializer:json"`
	Status                procurement.RequestStatus `gorm:"type:varchar(30);not null;index"`
	ReviewerNotes         string                    `gorm:"type:text"`
	RequesterReply        string                    `gorm:"type:text"`
	ApprovalDate          *time.Time
}

// TableName returns the table name for GORM
func (PurchaseRequestModel) TableName() string {
	return "purchase_requests"
}

// ToDomain converts the persistence model to a domain Request
func (m *PurchaseRequestModel) ToDomain() *procurement.Request {
	r := &procurement.Request{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Cost:              m.Cost,
		Department:        m.Department,
		RequesterID:       m.RequesterID,
		VendorID:          m.VendorID,
		IsNewVendor:       m.IsNewVendor,
		CostPerLicense:    m.CostPerLicense,
		NumLicenses:       m.NumLicenses,
		Attachments:       m.Attachments,
		Status:            m.Status,
		ReviewerNotes:     m.ReviewerNotes,
		RequesterReply:    m.RequesterReply,
		ApprovalDate:      m.ApprovalDate,
	}
	if r.Attachments == nil {
		r.Attachments = []string{}
	}
	if m.ProposedVendorName != nil {
		r.ProposedVendor = &procurement.ProposedVendor{
			Name:         *m.ProposedVendorName,
			Website:      deref(m.ProposedVendorWebsite),
			ContactEmail: deref(m.ProposedVendorEmail),
		}
	}
	return r
}

// FromDomain populates the persistence model from a domain Request
func (m *PurchaseRequestModel) FromDomain(r *procurement.Request) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Title = r.Title
	m.Description = r.Description
	m.Cost = r.Cost
	m.Department = r.Department
	m.RequesterID = r.RequesterID
	m.VendorID = r.VendorID
	m.IsNewVendor = r.IsNewVendor
	m.ProposedVendorName, m.ProposedVendorWebsite, m.ProposedVendorEmail = nil, nil, nil
	if pv := r.ProposedVendor; pv != nil {
		m.ProposedVendorName = &pv.Name
		m.ProposedVendorWebsite = &pv.Website
		m.ProposedVendorEmail = &pv.ContactEmail
	}
	m.CostPerLicense = r.CostPerLicense
	m.NumLicenses = r.NumLicenses
	m.Attachments = r.Attachments
	if m.Attachments == nil {
		m.Attachments = []string{}
	}
	m.Status = r.Status
	m.ReviewerNotes = r.ReviewerNotes
	m.RequesterReply = r.RequesterReply
	m.ApprovalDate = r.ApprovalDate
}

// PurchaseRequestModelFromDomain creates a new persistence model from a domain Request
func PurchaseRequestModelFromDomain(r *procurement.Request) *PurchaseRequestModel {
	m := &PurchaseRequestModel{}
	m.FromDomain(r)
	return m
}

// VendorModel is the persistence model for the Vendor aggregate.
type VendorModel struct {
	AggregateModel
	Name         string `gorm:"type:varchar(200);not null;index"`
	Website      string `gorm:"type:varchar(500)"`
	ContactEmail string `gorm:"type:varchar(200)"`
	Category     string `gorm:"type:varchar(100)"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *procurement.Vendor {
	return &procurement.Vendor{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Website:           m.Website,
		ContactEmail:      m.ContactEmail,
		Category:          m.Category,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *procurement.Vendor) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Name = v.Name
	m.Website = v.Website
	m.ContactEmail = v.ContactEmail
	m.Category = v.Category
	m.Active = v.Active
}

// VendorModelFromDomain creates a new persistence model from a domain Vendor
func VendorModelFromDomain(v *procurement.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}

// RequestStatusCountRow is one row of the per-status aggregation
type RequestStatusCountRow struct {
	Status procurement.RequestStatus
	Count  int64
	Total  decimal.NullDecimal
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
