package models

import (
	"github.com/procura/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User aggregate.
type UserModel struct {
	AggregateModel
	Name         string        `gorm:"type:varchar(200);not null"`
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;index"`
	Department   string        `gorm:"type:varchar(50)"`
	Active       bool          `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Department:        m.Department,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Department = u.Department
	m.Active = u.Active
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserSummaryRow is the projection loaded for requester display
type UserSummaryRow struct {
	ID    string
	Name  string
	Email string
}
