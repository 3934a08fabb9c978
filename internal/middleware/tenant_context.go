package middleware

import (
	"context"

	tenantctx "backoffice/internal/tenant"
)

// WithTenantContext attaches a TenantContext in non-HTTP entrypoints such as
// background jobs, where no middleware runs.
func WithTenantContext(ctx context.Context, tc tenantctx.TenantContext) context.Context {
	return tenantctx.WithTenantContext(ctx, tc)
}
