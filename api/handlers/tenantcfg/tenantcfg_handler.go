package tenantcfg

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backoffice/api/handlers/common"
	"backoffice/internal/tenant"
)

// Handler administers per-tenant routing configuration. All operations are
// restricted to system administrators by the config service itself.
type Handler struct {
	service tenant.ConfigService
	logger  *zap.Logger
}

func NewHandler(service tenant.ConfigService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createConfigRequest struct {
	TenantID       string `json:"tenant_id" binding:"required"`
	Mode           string `json:"mode" binding:"required"`
	BaseURL        string `json:"base_url"`
	Credential     string `json:"credential"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	RetryEnabled   bool   `json:"retry_enabled"`
	Environment    string `json:"environment"`
}

type changeModeRequest struct {
	Mode   string `json:"mode" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// List returns every active routing configuration.
func (h *Handler) List(c *gin.Context) {
	configs, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, configs)
}

// Get resolves one tenant's effective routing configuration.
func (h *Handler) Get(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	cfg, err := h.service.Resolve(c.Request.Context(), tenantID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, cfg)
}

// Create onboards a tenant with a routing configuration.
func (h *Handler) Create(c *gin.Context) {
	var req createConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	cfg, err := h.service.CreateConfig(c.Request.Context(), tenant.CreateConfigParams{
		TenantID:       req.TenantID,
		Mode:           req.Mode,
		BaseURL:        req.BaseURL,
		Credential:     req.Credential,
		TimeoutSeconds: req.TimeoutSeconds,
		RetryEnabled:   req.RetryEnabled,
		Environment:    req.Environment,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, cfg)
}

// ChangeMode switches a tenant between local and remote routing. The reason
// is mandatory and ends up in the audit trail.
func (h *Handler) ChangeMode(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	var req changeModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := h.service.ChangeMode(c.Request.Context(), tenantID, req.Mode, req.Reason); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "routing mode updated"})
}

// Deactivate retires a tenant's routing configuration.
func (h *Handler) Deactivate(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	if err := h.service.DeactivateConfig(c.Request.Context(), tenantID); err != nil {
		common.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.APIResponse{Success: true, Message: "routing configuration deactivated"})
}
