package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditpkg "backoffice/internal/audit"
	"backoffice/internal/tenant"
)

func newFixture(t *testing.T, identity tenant.TenantContext) (*gin.Engine, *auditpkg.DBRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&auditpkg.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zap.NewNop()
	recorder := auditpkg.NewDBRecorder(db, logger)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := tenant.WithTenantContext(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
	})
	h := NewHandler(recorder, logger)
	r.POST("/audit/logs/query", h.QueryLogs)
	r.GET("/audit/logs/:id", h.GetLog)
	return r, recorder
}

func seed(recorder *auditpkg.DBRecorder, tenantID string, n int) {
	ctx := context.Background()
	for i := 0; i < n; i++ {
		recorder.Log(ctx, auditpkg.Event{
			Type:        auditpkg.EventDataQuery,
			TenantID:    tenantID,
			Description: "seeded",
			Success:     true,
		})
	}
}

func query(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/audit/logs/query", &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type queryResponse struct {
	Data struct {
		Items      []auditpkg.AuditLog `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	} `json:"data"`
}

func TestQueryScopedToCallerTenant(t *testing.T) {
	r, recorder := newFixture(t, tenant.TenantContext{TenantID: "acme", UserID: "user-1"})
	seed(recorder, "acme", 3)
	seed(recorder, "globex", 2)

	// A regular caller asking for another tenant still only sees their own.
	w := query(t, r, auditpkg.LogQuery{TenantID: "globex"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var res queryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Data.Pagination.Total != 3 {
		t.Fatalf("total = %d, want 3", res.Data.Pagination.Total)
	}
	for _, item := range res.Data.Items {
		if item.TenantID != "acme" {
			t.Fatalf("leaked record for tenant %q", item.TenantID)
		}
	}
}

func TestAdminQueriesAcrossTenants(t *testing.T) {
	r, recorder := newFixture(t, tenant.TenantContext{TenantID: "ops", UserID: "admin-1", IsSystemAdmin: true})
	seed(recorder, "acme", 3)
	seed(recorder, "globex", 2)

	w := query(t, r, auditpkg.LogQuery{TenantID: "globex"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res queryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Data.Pagination.Total != 2 {
		t.Fatalf("total = %d, want 2", res.Data.Pagination.Total)
	}
}

func TestGetLogHidesOtherTenants(t *testing.T) {
	r, recorder := newFixture(t, tenant.TenantContext{TenantID: "acme", UserID: "user-1"})
	seed(recorder, "globex", 1)

	logs, _, err := recorder.QueryLogs(context.Background(), auditpkg.LogQuery{TenantID: "globex", Page: 1, PageSize: 1})
	if err != nil || len(logs) != 1 {
		t.Fatalf("seeded log lookup failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/audit/logs/"+logs[0].ID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetLogUnknownID(t *testing.T) {
	r, _ := newFixture(t, tenant.TenantContext{TenantID: "acme", UserID: "user-1"})

	req := httptest.NewRequest(http.MethodGet, "/audit/logs/00000000-0000-0000-0000-000000000000", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
