package model

import (
	"time"
)

// AppUser represents a credential-bearing principal belonging to exactly one Customer
type AppUser struct {
	UserID     uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	CustomerID uint      `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Username   string    `gorm:"column:username;type:varchar(150);uniqueIndex;not null" json:"username"`
	// Bcrypt hash. Never serialized, and excluded from default query
	// projections — only the elevated credential lookup selects it.
	Password  string    `gorm:"column:password;type:varchar(255)" json:"-"`
	FirstName string    `gorm:"column:first_name;type:varchar(150);not null" json:"first_name"`
	LastName  string    `gorm:"column:last_name;type:varchar(150);not null" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the frozen table name used by the existing schema
func (AppUser) TableName() string {
	return "AppUser"
}
