package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"backoffice/internal/security"
)

// ConfigStore defines persistence operations for RoutingConfig. A mode
// change is a single row update; readers racing a change observe either the
// old or the new row, never a partial write.
type ConfigStore interface {
	GetByTenantID(ctx context.Context, tenantID string) (*RoutingConfig, error)
	Create(ctx context.Context, cfg *RoutingConfig) error
	Update(ctx context.Context, cfg *RoutingConfig) error
	Deactivate(ctx context.Context, tenantID string) error
	ListActive(ctx context.Context) ([]*RoutingConfig, error)
}

type gormConfigStore struct {
	db *gorm.DB
}

// NewConfigStore constructs a ConfigStore backed by the given database.
func NewConfigStore(db *gorm.DB) ConfigStore {
	return &gormConfigStore{db: db}
}

func (s *gormConfigStore) GetByTenantID(ctx context.Context, tenantID string) (*RoutingConfig, error) {
	var cfg RoutingConfig
	err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	credential, err := security.DecryptCredential(cfg.Credential)
	if err != nil {
		return nil, fmt.Errorf("decrypt credential for tenant %s: %w", tenantID, err)
	}
	cfg.Credential = credential
	return &cfg, nil
}

func (s *gormConfigStore) Create(ctx context.Context, cfg *RoutingConfig) error {
	sealed, err := security.EncryptCredential(cfg.Credential)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}
	row := *cfg
	row.Credential = sealed
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *gormConfigStore) Update(ctx context.Context, cfg *RoutingConfig) error {
	sealed, err := security.EncryptCredential(cfg.Credential)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}
	cfg.UpdatedAt = time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&RoutingConfig{}).
		Where("tenant_id = ?", cfg.TenantID).
		Updates(map[string]any{
			"mode":            cfg.Mode,
			"base_url":        cfg.BaseURL,
			"credential":      sealed,
			"timeout_seconds": cfg.TimeoutSeconds,
			"retry_enabled":   cfg.RetryEnabled,
			"environment":     cfg.Environment,
			"active":          cfg.Active,
			"updated_at":      cfg.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormConfigStore) Deactivate(ctx context.Context, tenantID string) error {
	result := s.db.WithContext(ctx).Model(&RoutingConfig{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]any{
			"active":     false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormConfigStore) ListActive(ctx context.Context) ([]*RoutingConfig, error) {
	var configs []*RoutingConfig
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("tenant_id").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		plain, err := security.DecryptCredential(cfg.Credential)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential for tenant %s: %w", cfg.TenantID, err)
		}
		cfg.Credential = plain
	}
	return configs, nil
}
