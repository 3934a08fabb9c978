package middleware

import (
	"net/http"
	"strings"

	"backoffice/internal/auth"
	tenantctx "backoffice/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinTenantContextMiddleware converts the verified identity left by the auth
// middleware into a tenant.TenantContext and injects it into the request's
// context.Context. It must run after auth.Middleware.
func GinTenantContextMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		userCtx, exists := auth.GetUserContext(c)
		if !exists {
			log.Warn("missing user context before tenant middleware", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		tenantID := strings.TrimSpace(userCtx.TenantID)
		if tenantID == "" {
			log.Warn("token missing tenant id", zap.String("user", userCtx.UserID))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token carries no tenant claim"})
			return
		}

		tc := tenantctx.TenantContext{
			TenantID:      tenantID,
			UserID:        strings.TrimSpace(userCtx.UserID),
			Roles:         append([]string{}, userCtx.Roles...),
			IsSystemAdmin: hasSystemAdminRole(userCtx.Roles),
		}

		c.Set("tenant_id", tc.TenantID)
		c.Set("user_id", tc.UserID)

		ctx := tenantctx.WithTenantContext(c.Request.Context(), tc)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func hasSystemAdminRole(roles []string) bool {
	for _, r := range roles {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "super_admin", "system_admin":
			return true
		}
	}
	return false
}
