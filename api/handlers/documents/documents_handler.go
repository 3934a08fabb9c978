package documents

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backoffice/api/handlers/common"
	"backoffice/internal/dispatch"
	docs "backoffice/internal/documents"
)

// Handler serves the policy document pipeline: multipart upload, listing
// and on-demand text extraction through the dispatcher.
type Handler struct {
	service    *docs.Service
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

func NewHandler(service *docs.Service, dispatcher *dispatch.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{service: service, dispatcher: dispatcher, logger: logger}
}

// Upload accepts a multipart PDF upload and schedules extraction.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "MISSING_FILE", "multipart field file is required")
		return
	}

	var polizaID *int64
	if raw := c.PostForm("poliza_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			common.FailWithCode(c, http.StatusBadRequest, "INVALID_POLIZA_ID", "poliza_id must be a positive integer")
			return
		}
		polizaID = &id
	}

	src, err := file.Open()
	if err != nil {
		common.FailWithCode(c, http.StatusBadRequest, "UNREADABLE_FILE", err.Error())
		return
	}
	defer src.Close()

	doc, err := h.service.Ingest(c.Request.Context(), docs.IngestParams{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		PolizaID:    polizaID,
		Content:     src,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.Created(c, doc)
}

// Get returns one document's metadata and extraction state.
func (h *Handler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, doc)
}

// List returns the tenant's documents, newest first.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, list)
}

// Extract runs text extraction synchronously for one document.
func (h *Handler) Extract(c *gin.Context) {
	text, err := h.dispatcher.ExtractDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Fail(c, err)
		return
	}
	common.OK(c, gin.H{"document_id": c.Param("id"), "text": text})
}
