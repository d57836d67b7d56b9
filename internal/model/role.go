package model

import (
	"time"
)

// AppRole is a named bundle of permissions assignable to users
type AppRole struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string    `gorm:"column:roleName;type:varchar(200);uniqueIndex:idx_roleName;not null" json:"roleName"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the frozen table name used by the existing schema
func (AppRole) TableName() string {
	return "AppRole"
}

// AppPermission is an atomic grantable capability, optionally tied to an endpoint
type AppPermission struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PermissionName string    `gorm:"column:permissionName;type:varchar(200);uniqueIndex:idx_permissionName;not null" json:"permissionName"`
	EndPoint       string    `gorm:"column:endPoint;type:varchar(200)" json:"endPoint,omitempty"`
	Description    string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName keeps the frozen table name used by the existing schema
func (AppPermission) TableName() string {
	return "AppPermission"
}

// UserRole is the user↔role join row. No timestamps on the join itself;
// rows are only touched through the grant repository's idempotent
// assign/revoke operations.
type UserRole struct {
	UserID uint `gorm:"column:user_id;primaryKey"`
	RoleID uint `gorm:"column:role_id;primaryKey"`
}

// TableName keeps the frozen join table name used by the existing schema
func (UserRole) TableName() string {
	return "_userRole"
}

// RolePermission is the role↔permission join row
type RolePermission struct {
	RoleID       uint `gorm:"column:role_id;primaryKey"`
	PermissionID uint `gorm:"column:permission_id;primaryKey"`
}

// TableName keeps the frozen join table name used by the existing schema
func (RolePermission) TableName() string {
	return "_rolePermission"
}
