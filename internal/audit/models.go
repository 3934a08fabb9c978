package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is one immutable audit record. Rows are append-only; nothing in
// this service updates or deletes them.
type AuditLog struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string         `gorm:"type:varchar(64);index:idx_audit_tenant" json:"tenant_id"`
	ActorUserID   string         `gorm:"type:varchar(64);index:idx_audit_actor" json:"actor_user_id"`
	EventType     string         `gorm:"type:varchar(100);not null;index:idx_audit_event_type" json:"event_type"`
	EventCategory string         `gorm:"type:varchar(50);not null;index:idx_audit_category" json:"event_category"`
	EventLevel    string         `gorm:"type:varchar(20);not null" json:"event_level"`
	EntityName    string         `gorm:"type:varchar(64);index" json:"entity_name"`
	EntityID      string         `gorm:"type:varchar(64)" json:"entity_id"`
	Action        string         `gorm:"type:varchar(64)" json:"action"`
	Description   string         `gorm:"type:text" json:"description"`
	OldValue      datatypes.JSON `gorm:"type:jsonb" json:"old_value,omitempty"`
	NewValue      datatypes.JSON `gorm:"type:jsonb" json:"new_value,omitempty"`
	Success       bool           `gorm:"not null;default:true" json:"success"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_audit_created_at" json:"created_at"`
}

// BeforeCreate assigns the ID and timestamp when absent.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// TableName fixes the table name.
func (AuditLog) TableName() string {
	return "audit_logs"
}
