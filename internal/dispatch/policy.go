package dispatch

import (
	"context"
	"time"

	"backoffice/internal/tenant"
)

// RoutingPolicy supplies the routing configuration for a tenant. The store
// policy is the production strategy; the static policy serves deployments
// where every tenant is pinned to one side.
type RoutingPolicy interface {
	ConfigFor(ctx context.Context, tenantID string) (*tenant.RoutingConfig, error)
}

// StaticPolicy routes every tenant with a fixed mode and timeout, ignoring
// per-tenant configuration entirely.
type StaticPolicy struct {
	mode    tenant.Mode
	timeout time.Duration
}

func NewStaticPolicy(mode tenant.Mode, timeout time.Duration) *StaticPolicy {
	return &StaticPolicy{mode: mode, timeout: timeout}
}

func (p *StaticPolicy) ConfigFor(_ context.Context, tenantID string) (*tenant.RoutingConfig, error) {
	seconds := int(p.timeout / time.Second)
	return &tenant.RoutingConfig{
		TenantID:       tenantID,
		Mode:           p.mode,
		TimeoutSeconds: seconds,
		Active:         true,
	}, nil
}

// StorePolicy resolves the tenant's routing configuration through the config
// service, which consults the cache and the database.
type StorePolicy struct {
	service tenant.ConfigService
}

func NewStorePolicy(service tenant.ConfigService) *StorePolicy {
	return &StorePolicy{service: service}
}

func (p *StorePolicy) ConfigFor(ctx context.Context, tenantID string) (*tenant.RoutingConfig, error) {
	return p.service.Resolve(ctx, tenantID)
}
