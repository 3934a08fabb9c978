package tenant

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("tenant: not found")
	// ErrUnknownTenant is returned when no routing configuration exists for
	// the calling tenant.
	ErrUnknownTenant = errors.New("tenant: unknown tenant")
	// ErrInvalidMode is returned when a write carries a mode outside
	// {local, remote}. Invalid modes are rejected at write time and only
	// normalized defensively at read time.
	ErrInvalidMode = errors.New("tenant: invalid mode")
	// ErrForbidden is returned when the caller may not perform the
	// requested configuration operation.
	ErrForbidden = errors.New("tenant: forbidden")
)

// Mode selects which backend serves a tenant's operations.
type Mode string

const (
	// ModeLocal serves operations from the local store.
	ModeLocal Mode = "local"
	// ModeRemote serves operations from the Velneo partner API.
	ModeRemote Mode = "remote"
)

// ParseMode validates a mode value strictly. Used on every write path.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLocal:
		return ModeLocal, nil
	case ModeRemote:
		return ModeRemote, nil
	default:
		return "", ErrInvalidMode
	}
}

// NormalizeMode maps any stored value onto a legal mode. Unrecognized or
// missing values become ModeLocal; the second return value reports whether
// the input was recognized, so callers can flag the normalization.
func NormalizeMode(s string) (Mode, bool) {
	mode, err := ParseMode(s)
	if err != nil {
		return ModeLocal, false
	}
	return mode, true
}

// RoutingConfig is one tenant's backend routing configuration. Rows are
// deactivated, never physically removed, while referenced by active users.
type RoutingConfig struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID       string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"tenant_id"`
	Mode           Mode      `gorm:"type:varchar(16);not null;default:local" json:"mode"`
	BaseURL        string    `gorm:"type:varchar(512)" json:"base_url"`
	Credential     string    `gorm:"type:varchar(512)" json:"-"`
	TimeoutSeconds int       `gorm:"not null;default:30" json:"timeout_seconds"`
	RetryEnabled   bool      `gorm:"not null;default:true" json:"retry_enabled"`
	Environment    string    `gorm:"type:varchar(32)" json:"environment"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName fixes the table name.
func (RoutingConfig) TableName() string {
	return "tenant_routing_configs"
}

// EffectiveMode returns the stored mode normalized to a legal value.
func (c *RoutingConfig) EffectiveMode() Mode {
	mode, _ := NormalizeMode(string(c.Mode))
	return mode
}

// Timeout returns the per-tenant execution timeout, with a 30 second
// default for unset values.
func (c *RoutingConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
