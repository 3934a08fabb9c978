package documents

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document lifecycle states.
const (
	StatusPending   = "pending"
	StatusExtracted = "extracted"
	StatusFailed    = "failed"
)

var (
	// ErrUnsupportedType rejects uploads that are not PDF files.
	ErrUnsupportedType = errors.New("documents: unsupported document type")
	// ErrTooLarge rejects uploads over the configured size limit.
	ErrTooLarge = errors.New("documents: document too large")
)

// PolicyDocument is an uploaded policy file awaiting or holding extracted
// text. Extraction always runs locally; documents never travel to the
// partner system.
type PolicyDocument struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TenantID      string    `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	PolizaID      *int64    `gorm:"index" json:"poliza_id,omitempty"`
	FileName      string    `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType   string    `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
	StoragePath   string    `gorm:"type:varchar(512)" json:"-"`
	Status        string    `gorm:"type:varchar(20);default:pending;index" json:"status"`
	ExtractedText string    `gorm:"type:text" json:"extracted_text,omitempty"`
	PageCount     int       `json:"page_count"`
	FailureReason string    `gorm:"type:varchar(512)" json:"failure_reason,omitempty"`
	UploadedBy    string    `gorm:"type:varchar(64)" json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (PolicyDocument) TableName() string {
	return "policy_documents"
}

func (d *PolicyDocument) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}
