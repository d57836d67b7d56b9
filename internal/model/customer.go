package model

import (
	"time"
)

// Customer represents a tenant organization owning a set of users.
//
// The customers table carries its own audit columns and an optimistic-lock
// version instead of the default GORM timestamps, matching the production
// schema it is synced against. customer_name, customer_code and fiscal_number
// are unique case-insensitively (UPPER() expression indexes, see database pkg).
type Customer struct {
	CustomerID        uint       `gorm:"column:customer_id;primaryKey;autoIncrement" json:"customer_id"`
	CustomerName      string     `gorm:"column:customer_name;type:varchar(250);not null" json:"customer_name"`
	CustomerCode      string     `gorm:"column:customer_code;type:varchar(10);not null" json:"customer_code"`
	CustomerTypeID    uint       `gorm:"column:customer_type_id;not null;index:cust_custt_fki" json:"customer_type_id"`
	FiscalNumber      *string    `gorm:"column:fiscal_number;type:varchar(100)" json:"fiscal_number,omitempty"`
	RecordVersion     uint       `gorm:"column:record_version;not null" json:"record_version"`
	CreationDate      time.Time  `gorm:"column:creation_date;not null" json:"creation_date"`
	CreationUser      string     `gorm:"column:creation_user;type:varchar(150);not null" json:"creation_user"`
	LastUpdateDate    *time.Time `gorm:"column:last_update_date" json:"last_update_date,omitempty"`
	LastUpdateUser    *string    `gorm:"column:last_update_user;type:varchar(150)" json:"last_update_user,omitempty"`
	LastUpdateProcess string     `gorm:"column:last_update_process;type:varchar(250);not null" json:"last_update_process"`

	// Users owned by this customer (one customer has many users)
	Users []AppUser `gorm:"foreignKey:CustomerID" json:"users,omitempty"`
}

// TableName keeps the frozen table name used by the existing schema
func (Customer) TableName() string {
	return "customers"
}
