package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const userContextKey = "auth_user_context"

// UserContext is the verified identity attached to a request after the auth
// middleware has validated its token.
type UserContext struct {
	UserID   string
	TenantID string
	Roles    []string
}

// Middleware validates the Authorization header and attaches the resulting
// UserContext to the gin context. Requests without a valid access token are
// rejected with 401.
func Middleware(service *JWTService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		claims, err := service.ValidateToken(c.Request.Context(), ExtractTokenFromBearer(header))
		if err != nil {
			logger.Debug("token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is not an access token"})
			return
		}

		c.Set(userContextKey, &UserContext{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Roles:    claims.Roles,
		})
		c.Next()
	}
}

// GetUserContext returns the verified identity for the request, if any.
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	uc, ok := value.(*UserContext)
	return uc, ok
}
