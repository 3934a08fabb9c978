package tenant

import (
	"context"
	"errors"
)

var (
	// ErrUnauthenticated is returned when no verified caller identity is
	// present in the request context.
	ErrUnauthenticated = errors.New("tenant: unauthenticated")
	// ErrMissingTenantClaim is returned when the caller identity carries no
	// tenant claim.
	ErrMissingTenantClaim = errors.New("tenant: missing tenant claim")
)

// TenantContext carries tenant and user identity information through the
// request lifecycle. It is populated once at the HTTP boundary and then
// passed down as an explicit context value; nothing below the boundary
// reads ambient global state.
type TenantContext struct {
	TenantID      string
	UserID        string
	Roles         []string
	IsSystemAdmin bool
}

type tenantContextKey struct{}

// WithTenantContext attaches the given TenantContext to the provided context
// and returns a derived context.
func WithTenantContext(ctx context.Context, tc TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// FromContext attempts to retrieve a TenantContext from the given context.
// The second return value indicates whether one was present.
func FromContext(ctx context.Context) (TenantContext, bool) {
	value := ctx.Value(tenantContextKey{})
	if value == nil {
		return TenantContext{}, false
	}

	tc, ok := value.(TenantContext)
	if !ok {
		return TenantContext{}, false
	}

	return tc, true
}

// CurrentTenantID resolves the calling tenant from the request context.
func CurrentTenantID(ctx context.Context) (string, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	if tc.TenantID == "" {
		return "", ErrMissingTenantClaim
	}
	return tc.TenantID, nil
}

// CurrentUserID resolves the acting user from the request context.
func CurrentUserID(ctx context.Context) (string, error) {
	tc, ok := FromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	if tc.UserID == "" {
		return "", ErrUnauthenticated
	}
	return tc.UserID, nil
}
