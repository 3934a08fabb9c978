package audit

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/api/handlers/common"
	auditpkg "backoffice/internal/audit"
	"backoffice/internal/tenant"
)

const maxPageSize = 100

// Handler exposes the audit trail to operators. Non-admin callers only see
// their own tenant's records.
type Handler struct {
	recorder *auditpkg.DBRecorder
	logger   *zap.Logger
}

func NewHandler(recorder *auditpkg.DBRecorder, logger *zap.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger}
}

// QueryLogs searches the audit trail. Filters arrive as a JSON body so that
// time windows and event-type lists stay expressible.
func (h *Handler) QueryLogs(c *gin.Context) {
	tc, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		common.Fail(c, tenant.ErrUnauthenticated)
		return
	}

	var query auditpkg.LogQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	// Tenant scoping is not negotiable for regular callers.
	if !tc.IsSystemAdmin {
		query.TenantID = tc.TenantID
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}

	logs, total, err := h.recorder.QueryLogs(c.Request.Context(), query)
	if err != nil {
		common.Fail(c, err)
		return
	}

	totalPage := int((total + int64(query.PageSize) - 1) / int64(query.PageSize))
	c.JSON(http.StatusOK, common.APIResponse{
		Success: true,
		Data: common.ListResponse{
			Items: logs,
			Pagination: common.PaginationMeta{
				Page:      query.Page,
				PageSize:  query.PageSize,
				Total:     total,
				TotalPage: totalPage,
			},
		},
	})
}

// GetLog returns a single audit record by id.
func (h *Handler) GetLog(c *gin.Context) {
	tc, ok := tenant.FromContext(c.Request.Context())
	if !ok {
		common.Fail(c, tenant.ErrUnauthenticated)
		return
	}

	log, err := h.recorder.GetLogByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tenant.ErrNotFound
		}
		common.Fail(c, err)
		return
	}
	if !tc.IsSystemAdmin && log.TenantID != tc.TenantID {
		common.Fail(c, tenant.ErrNotFound)
		return
	}
	common.OK(c, log)
}
