// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and AggregateModel (id, timestamps, version)
// - identity.go: users
// - procurement.go: purchase requests and vendors
package models
