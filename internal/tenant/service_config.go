package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConfigService resolves and administers per-tenant routing configuration.
// Resolution happens on every request; nothing is held between requests
// except the explicit cache, which is invalidated on every mutation.
type ConfigService interface {
	Resolve(ctx context.Context, tenantID string) (*RoutingConfig, error)
	ChangeMode(ctx context.Context, tenantID string, newMode string, reason string) error
	CreateConfig(ctx context.Context, params CreateConfigParams) (*RoutingConfig, error)
	DeactivateConfig(ctx context.Context, tenantID string) error
	ListActive(ctx context.Context) ([]*RoutingConfig, error)
}

// CreateConfigParams describes inputs for a new tenant routing configuration.
type CreateConfigParams struct {
	TenantID       string
	Mode           string
	BaseURL        string
	Credential     string
	TimeoutSeconds int
	RetryEnabled   bool
	Environment    string
}

type configService struct {
	store    ConfigStore
	cache    ConfigCache
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewConfigService constructs a ConfigService with its dependencies. cache
// may be nil, in which case every resolution hits the store.
func NewConfigService(store ConfigStore, cache ConfigCache, recorder audit.Recorder, logger *zap.Logger) ConfigService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &configService{store: store, cache: cache, recorder: recorder, logger: logger}
}

// Resolve loads the routing configuration for a tenant. An unrecognized
// stored mode is normalized to local here so that it is never propagated
// as a routing decision.
func (s *configService) Resolve(ctx context.Context, tenantID string) (*RoutingConfig, error) {
	if tenantID == "" {
		return nil, ErrUnknownTenant
	}

	if s.cache != nil {
		if cfg, ok := s.cache.Get(ctx, tenantID); ok && cfg.Active {
			return s.normalized(cfg), nil
		}
	}

	cfg, err := s.store.GetByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownTenant
		}
		return nil, err
	}
	if !cfg.Active {
		return nil, ErrUnknownTenant
	}

	if s.cache != nil {
		s.cache.Set(ctx, tenantID, cfg)
	}
	return s.normalized(cfg), nil
}

// normalized returns a copy with the mode mapped onto a legal value.
func (s *configService) normalized(cfg *RoutingConfig) *RoutingConfig {
	mode := cfg.EffectiveMode()
	if mode == cfg.Mode {
		return cfg
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		s.logger.Warn("unrecognized tenant mode normalized to local",
			zap.String("tenant_id", cfg.TenantID),
			zap.String("stored_mode", string(cfg.Mode)),
		)
	}
	out := *cfg
	out.Mode = mode
	return &out
}

// ChangeMode switches a tenant between local and remote. The change is
// audited unconditionally with old and new mode, actor and reason; unlike
// business operations it has no remote alternative to fall back to.
func (s *configService) ChangeMode(ctx context.Context, tenantID string, newMode string, reason string) error {
	tc, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !tc.IsSystemAdmin {
		return ErrForbidden
	}

	mode, err := ParseMode(newMode)
	if err != nil {
		s.recorder.LogError(ctx, err, "rejected mode change: invalid mode", audit.Event{
			Type:     audit.EventTenantModeChanged,
			TenantID: tenantID,
			Action:   "change_mode",
			NewValue: map[string]string{"mode": newMode},
		})
		return err
	}

	cfg, err := s.store.GetByTenantID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownTenant
		}
		return err
	}

	oldMode := cfg.Mode
	cfg.Mode = mode
	if err := s.store.Update(ctx, cfg); err != nil {
		return fmt.Errorf("persist mode change: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID)
	}

	s.recorder.Log(ctx, audit.Event{
		Type:        audit.EventTenantModeChanged,
		TenantID:    tenantID,
		ActorUserID: tc.UserID,
		Action:      "change_mode",
		Description: strings.TrimSpace(reason),
		OldValue:    map[string]string{"mode": string(oldMode)},
		NewValue:    map[string]string{"mode": string(mode)},
		Success:     true,
	})

	return nil
}

// CreateConfig registers routing configuration for a new tenant.
func (s *configService) CreateConfig(ctx context.Context, params CreateConfigParams) (*RoutingConfig, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !tc.IsSystemAdmin {
		return nil, ErrForbidden
	}

	if strings.TrimSpace(params.TenantID) == "" {
		return nil, errors.New("tenant: missing tenant id")
	}
	mode, err := ParseMode(params.Mode)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cfg := &RoutingConfig{
		ID:             uuid.New().String(),
		TenantID:       strings.TrimSpace(params.TenantID),
		Mode:           mode,
		BaseURL:        strings.TrimSpace(params.BaseURL),
		Credential:     params.Credential,
		TimeoutSeconds: params.TimeoutSeconds,
		RetryEnabled:   params.RetryEnabled,
		Environment:    params.Environment,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, cfg); err != nil {
		return nil, err
	}

	s.recorder.Log(ctx, audit.Event{
		Type:        audit.EventTenantConfigCreated,
		TenantID:    cfg.TenantID,
		ActorUserID: tc.UserID,
		Action:      "create_config",
		NewValue:    map[string]any{"mode": cfg.Mode, "environment": cfg.Environment},
		Success:     true,
	})

	return cfg, nil
}

// DeactivateConfig logically deletes a tenant's configuration. The row is
// kept while active users still reference the tenant.
func (s *configService) DeactivateConfig(ctx context.Context, tenantID string) error {
	tc, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !tc.IsSystemAdmin {
		return ErrForbidden
	}

	if err := s.store.Deactivate(ctx, tenantID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownTenant
		}
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, tenantID)
	}

	s.recorder.Log(ctx, audit.Event{
		Type:        audit.EventTenantConfigDeactivated,
		TenantID:    tenantID,
		ActorUserID: tc.UserID,
		Action:      "deactivate_config",
		Success:     true,
	})

	return nil
}

func (s *configService) ListActive(ctx context.Context) ([]*RoutingConfig, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !tc.IsSystemAdmin {
		return nil, ErrForbidden
	}
	return s.store.ListActive(ctx)
}
