package handlers

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backoffice/internal/middleware"
	"backoffice/internal/tenant"
	"backoffice/internal/worker/tasks"
)

// Extractor runs a routed document extraction. The dispatcher satisfies it,
// so queued extractions get the same routing and audit treatment as inline
// ones.
type Extractor interface {
	ExtractDocument(ctx context.Context, documentID string) (string, error)
}

// DocumentHandler processes queued document extraction tasks.
type DocumentHandler struct {
	extractor Extractor
	logger    *zap.Logger
}

func NewDocumentHandler(extractor Extractor, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{extractor: extractor, logger: logger}
}

// HandleExtractDocument rebuilds the tenant identity from the payload and
// runs the extraction. Returning an error lets asynq retry the task.
func (h *DocumentHandler) HandleExtractDocument(ctx context.Context, task *asynq.Task) error {
	payload, err := tasks.ParseExtractDocumentPayload(task)
	if err != nil {
		// A malformed payload never becomes valid; drop it.
		h.logger.Error("dropping malformed extraction task", zap.Error(err))
		return nil
	}

	ctx = middleware.WithTenantContext(ctx, tenant.TenantContext{
		TenantID: payload.TenantID,
		UserID:   payload.UserID,
	})

	if _, err := h.extractor.ExtractDocument(ctx, payload.DocumentID); err != nil {
		h.logger.Warn("document extraction failed",
			zap.String("document_id", payload.DocumentID),
			zap.String("tenant_id", payload.TenantID),
			zap.Error(err))
		return err
	}

	h.logger.Info("document extracted",
		zap.String("document_id", payload.DocumentID),
		zap.String("tenant_id", payload.TenantID))
	return nil
}
