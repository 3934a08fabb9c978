package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/audit"
	"backoffice/internal/config"
	"backoffice/internal/metrics"
	"backoffice/internal/tenant"
	"backoffice/internal/worker/tasks"
)

// TaskEnqueuer queues background work. *asynq.Client satisfies it.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service ingests policy documents and extracts their text. With a queue
// configured extraction runs asynchronously on the worker; without one it
// runs inline during ingest, through the same routed entry point the worker
// uses.
type Service struct {
	db          *gorm.DB
	storagePath string
	maxFileSize int64
	queue       TaskEnqueuer
	extractor   *PDFExtractor
	runExtract  func(ctx context.Context, documentID string) (string, error)
	recorder    audit.Recorder
	logger      *zap.Logger
}

func NewService(db *gorm.DB, cfg config.DocumentConfig, queue TaskEnqueuer, recorder audit.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:          db,
		storagePath: cfg.StoragePath,
		maxFileSize: cfg.MaxFileSize,
		queue:       queue,
		extractor:   NewPDFExtractor(logger),
		recorder:    recorder,
		logger:      logger,
	}
}

// SetExtractRunner installs the routed extraction entry point used when no
// queue is configured. Inline extraction must take the same path the worker
// takes, so the routing decision and audit trail are identical on both.
func (s *Service) SetExtractRunner(run func(ctx context.Context, documentID string) (string, error)) {
	s.runExtract = run
}

// IngestParams describe one uploaded file.
type IngestParams struct {
	FileName    string
	ContentType string
	Size        int64
	PolizaID    *int64
	Content     io.Reader
}

// Ingest stores the uploaded file under the tenant's directory, records the
// document row and schedules extraction.
func (s *Service) Ingest(ctx context.Context, params IngestParams) (*PolicyDocument, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	userID, _ := tenant.CurrentUserID(ctx)

	if !strings.EqualFold(filepath.Ext(params.FileName), ".pdf") {
		metrics.DocumentIngestsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %q, only pdf is accepted", ErrUnsupportedType, filepath.Ext(params.FileName))
	}
	if s.maxFileSize > 0 && params.Size > s.maxFileSize {
		metrics.DocumentIngestsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxFileSize)
	}

	docID := uuid.New().String()
	dir := filepath.Join(s.storagePath, tenantID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("prepare document directory: %w", err)
	}
	path := filepath.Join(dir, docID+".pdf")

	written, err := s.writeFile(path, params.Content)
	if err != nil {
		metrics.DocumentIngestsTotal.WithLabelValues("failed").Inc()
		s.recorder.LogError(ctx, err, "document upload failed", audit.Event{
			Type:       audit.EventDocumentIngestFailed,
			TenantID:   tenantID,
			EntityName: "document",
			Action:     "ingest",
		})
		return nil, err
	}

	doc := &PolicyDocument{
		ID:          docID,
		TenantID:    tenantID,
		PolizaID:    params.PolizaID,
		FileName:    params.FileName,
		ContentType: params.ContentType,
		SizeBytes:   written,
		StoragePath: path,
		Status:      StatusPending,
		UploadedBy:  userID,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		os.Remove(path)
		metrics.DocumentIngestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("record document: %w", err)
	}

	metrics.DocumentIngestsTotal.WithLabelValues("accepted").Inc()
	s.recorder.Log(ctx, audit.Event{
		Type:        audit.EventDocumentIngested,
		TenantID:    tenantID,
		ActorUserID: userID,
		EntityName:  "document",
		EntityID:    doc.ID,
		Action:      "ingest",
		Description: fmt.Sprintf("document %s ingested (%d bytes)", params.FileName, written),
		Success:     true,
	})

	s.scheduleExtraction(ctx, doc, tenantID, userID)
	return doc, nil
}

func (s *Service) writeFile(path string, content io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("store document: %w", err)
	}
	defer f.Close()

	limit := s.maxFileSize
	if limit <= 0 {
		limit = 64 << 20
	}
	written, err := io.Copy(f, io.LimitReader(content, limit+1))
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("store document: %w", err)
	}
	if written > limit {
		os.Remove(path)
		return 0, fmt.Errorf("document exceeds the %d byte limit", limit)
	}
	return written, nil
}

func (s *Service) scheduleExtraction(ctx context.Context, doc *PolicyDocument, tenantID, userID string) {
	if s.queue == nil {
		if s.runExtract == nil {
			// The row stays pending; a manual re-extract can pick it up.
			s.logger.Warn("no extraction runner configured", zap.String("document_id", doc.ID))
			return
		}
		if _, err := s.runExtract(ctx, doc.ID); err != nil {
			s.logger.Warn("inline extraction failed", zap.String("document_id", doc.ID), zap.Error(err))
		}
		return
	}

	task, err := tasks.NewExtractDocumentTask(tasks.ExtractDocumentPayload{
		DocumentID: doc.ID,
		TenantID:   tenantID,
		UserID:     userID,
	})
	if err == nil {
		_, err = s.queue.EnqueueContext(ctx, task)
	}
	if err != nil {
		// The row stays pending; a manual re-extract can pick it up.
		s.logger.Error("enqueue extraction failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
}

// Extract parses the stored file and saves its text. It satisfies the
// dispatcher's extractor interface, so calls arrive already routed and
// audited.
func (s *Service) Extract(ctx context.Context, documentID string) (string, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return "", err
	}

	var doc PolicyDocument
	err = s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", documentID, tenantID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("document %s: %w", documentID, tenant.ErrNotFound)
	}
	if err != nil {
		return "", err
	}

	f, err := os.Open(doc.StoragePath)
	if err != nil {
		s.markFailed(ctx, &doc, err)
		return "", fmt.Errorf("open stored document: %w", err)
	}
	defer f.Close()

	text, pages, err := s.extractor.ExtractText(f)
	if err != nil {
		s.markFailed(ctx, &doc, err)
		return "", err
	}

	update := map[string]any{
		"status":         StatusExtracted,
		"extracted_text": text,
		"page_count":     pages,
		"failure_reason": "",
	}
	if err := s.db.WithContext(ctx).Model(&doc).Updates(update).Error; err != nil {
		return "", fmt.Errorf("save extracted text: %w", err)
	}
	return text, nil
}

func (s *Service) markFailed(ctx context.Context, doc *PolicyDocument, cause error) {
	update := map[string]any{
		"status":         StatusFailed,
		"failure_reason": cause.Error(),
	}
	if err := s.db.WithContext(ctx).Model(doc).Updates(update).Error; err != nil {
		s.logger.Error("record extraction failure", zap.String("document_id", doc.ID), zap.Error(err))
	}
	s.recorder.LogError(ctx, cause, "document extraction failed", audit.Event{
		Type:       audit.EventDocumentIngestFailed,
		TenantID:   doc.TenantID,
		EntityName: "document",
		EntityID:   doc.ID,
		Action:     "extract",
	})
}

// Get returns one document for the calling tenant.
func (s *Service) Get(ctx context.Context, documentID string) (*PolicyDocument, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var doc PolicyDocument
	err = s.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", documentID, tenantID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("document %s: %w", documentID, tenant.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the calling tenant's documents, newest first.
func (s *Service) List(ctx context.Context) ([]*PolicyDocument, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var docs []*PolicyDocument
	err = s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
