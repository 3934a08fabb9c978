package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	auditHandler "backoffice/api/handlers/audit"
	documentsHandler "backoffice/api/handlers/documents"
	registryHandler "backoffice/api/handlers/registry"
	tenantcfgHandler "backoffice/api/handlers/tenantcfg"
	"backoffice/internal/auth"
	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Registry  *registryHandler.Handler
	TenantCfg *tenantcfgHandler.Handler
	Documents *documentsHandler.Handler
	Audit     *auditHandler.Handler
}

// RegisterRoutes mounts public endpoints and the authenticated /api/v1
// surface. Every authenticated route runs behind JWT verification, tenant
// context injection and per-tenant rate limiting.
func RegisterRoutes(r *gin.Engine, h Handlers, jwtService *auth.JWTService, limiter *middleware.RateLimiter, logger *zap.Logger) {
	r.Use(middleware.RequestIDMiddleware())
	r.Use(metrics.PrometheusMiddleware())

	r.GET("/health", HealthCheck)
	r.GET("/ready", ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(jwtService, logger))
	v1.Use(middleware.GinTenantContextMiddleware(logger))
	v1.Use(middleware.RateLimitByTenant(limiter))

	registerRegistryRoutes(v1, h.Registry)
	registerTenantConfigRoutes(v1, h.TenantCfg)
	registerDocumentRoutes(v1, h.Documents)
	registerAuditRoutes(v1, h.Audit)
}

func registerRegistryRoutes(v1 *gin.RouterGroup, h *registryHandler.Handler) {
	clients := v1.Group("/clients")
	{
		clients.GET("", h.ListClients)
		clients.GET("/search", h.SearchClients)
		clients.GET("/:id", h.GetClient)
		clients.POST("", h.CreateClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}

	brokers := v1.Group("/brokers")
	{
		brokers.GET("", h.ListBrokers)
		brokers.GET("/search", h.SearchBrokers)
		brokers.GET("/:id", h.GetBroker)
		brokers.POST("", h.CreateBroker)
		brokers.PUT("/:id", h.UpdateBroker)
		brokers.DELETE("/:id", h.DeleteBroker)
	}

	companies := v1.Group("/companies")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/search", h.SearchCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", h.CreateCompany)
		companies.PUT("/:id", h.UpdateCompany)
		companies.DELETE("/:id", h.DeleteCompany)
	}

	currencies := v1.Group("/currencies")
	{
		currencies.GET("", h.ListCurrencies)
		currencies.GET("/search", h.SearchCurrencies)
		currencies.GET("/:id", h.GetCurrency)
		currencies.POST("", h.CreateCurrency)
		currencies.PUT("/:id", h.UpdateCurrency)
		currencies.DELETE("/:id", h.DeleteCurrency)
	}

	polizas := v1.Group("/polizas")
	{
		polizas.GET("", h.ListPolizas)
		polizas.GET("/search", h.SearchPolizas)
		polizas.GET("/:id", h.GetPoliza)
		polizas.POST("", h.CreatePoliza)
		polizas.PUT("/:id", h.UpdatePoliza)
		polizas.DELETE("/:id", h.DeletePoliza)
	}
}

func registerTenantConfigRoutes(v1 *gin.RouterGroup, h *tenantcfgHandler.Handler) {
	cfg := v1.Group("/tenant-configs")
	{
		cfg.GET("", h.List)
		cfg.GET("/:tenant_id", h.Get)
		cfg.POST("", h.Create)
		cfg.PUT("/:tenant_id/mode", h.ChangeMode)
		cfg.DELETE("/:tenant_id", h.Deactivate)
	}
}

func registerDocumentRoutes(v1 *gin.RouterGroup, h *documentsHandler.Handler) {
	docs := v1.Group("/documents")
	{
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.POST("", h.Upload)
		docs.POST("/:id/extract", h.Extract)
	}
}

func registerAuditRoutes(v1 *gin.RouterGroup, h *auditHandler.Handler) {
	audit := v1.Group("/audit")
	{
		audit.POST("/logs/query", h.QueryLogs)
		audit.GET("/logs/:id", h.GetLog)
	}
}
