package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateCustomer = "CREATE_CUSTOMER"
	ActionUpdateCustomer = "UPDATE_CUSTOMER"
	ActionCreateUser     = "CREATE_USER"
	ActionCreateRole     = "CREATE_ROLE"
	ActionCreatePerm     = "CREATE_PERMISSION"

	// Access-graph mutations
	ActionAssignRole       = "ASSIGN_ROLE"
	ActionRevokeRole       = "REVOKE_ROLE"
	ActionGrantPermission  = "GRANT_PERMISSION"
	ActionRevokePermission = "REVOKE_PERMISSION"

	// Credential events
	ActionLoginSuccess      = "LOGIN_SUCCESS"
	ActionLoginFailed       = "LOGIN_FAILED"
	ActionCorruptCredential = "CORRUPT_CREDENTIAL"
)

// AuditLog tracks Who, What, and When for credential and access-control changes
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uint     `gorm:"column:user_id;index" json:"user_id"` // Nullable gracefully if automated process
	User       *AppUser  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (numeric id/code)
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string    `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the entry id in the application so the model works on
// engines without gen_random_uuid()
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
