package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records superadmin mutations (institutions, admin accounts)
type AdminAuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	AdminID     uint           `gorm:"index" json:"admin_id"`
	Action      string         `gorm:"type:varchar(50)" json:"action"`   // create, update, delete
	Resource    string         `gorm:"type:varchar(50)" json:"resource"` // institutions, admins
	ResourceID  uint           `json:"resource_id"`
	OldValue    datatypes.JSON `json:"old_value,omitempty"`
	NewValue    datatypes.JSON `json:"new_value,omitempty"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	Description string         `json:"description"`

	// Relationships
	Admin User `gorm:"foreignKey:AdminID" json:"-"`
}
