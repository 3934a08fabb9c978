package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/audit"
	"backoffice/internal/config"
	"backoffice/internal/dispatch"
	docs "backoffice/internal/documents"
	"backoffice/internal/tenant"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&docs.PolicyDocument{}, &audit.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := zap.NewNop()
	recorder := audit.NewDBRecorder(db, logger)
	service := docs.NewService(db, config.DocumentConfig{
		StoragePath: t.TempDir(),
		MaxFileSize: 1 << 20,
	}, nil, recorder, logger)

	dispatcher := dispatch.New(dispatch.Config{
		Policy:    dispatch.NewStaticPolicy(tenant.ModeLocal, time.Second),
		Extractor: service,
		Recorder:  recorder,
		Logger:    logger,
	})
	service.SetExtractRunner(dispatcher.ExtractDocument)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := tenant.WithTenantContext(c.Request.Context(), tenant.TenantContext{
			TenantID: "acme",
			UserID:   "user-1",
		})
		c.Request = c.Request.WithContext(ctx)
	})

	h := NewHandler(service, dispatcher, logger)
	r.POST("/documents", h.Upload)
	r.GET("/documents", h.List)
	r.GET("/documents/:id", h.Get)
	r.POST("/documents/:id/extract", h.Extract)
	return r
}

func upload(t *testing.T, r *gin.Engine, fileName string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadStoresDocument(t *testing.T) {
	r := newRouter(t)

	w := upload(t, r, "policy.pdf", []byte("%PDF-1.4 payload"), map[string]string{"poliza_id": "7"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res struct {
		Data docs.PolicyDocument `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Data.ID == "" {
		t.Fatal("expected assigned document id")
	}
	if res.Data.PolizaID == nil || *res.Data.PolizaID != 7 {
		t.Fatal("expected poliza link to be recorded")
	}

	list := httptest.NewRequest(http.MethodGet, "/documents", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, list)
	if lw.Code != http.StatusOK {
		t.Fatalf("list status = %d", lw.Code)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	r := newRouter(t)

	w := upload(t, r, "notes.txt", []byte("plain text"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUploadRejectsBadPolizaID(t *testing.T) {
	r := newRouter(t)

	w := upload(t, r, "policy.pdf", []byte("%PDF-1.4"), map[string]string{"poliza_id": "zero"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetUnknownDocument(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/documents/missing-id", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
