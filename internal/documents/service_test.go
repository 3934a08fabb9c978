package documents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"backoffice/internal/audit"
	"backoffice/internal/config"
	"backoffice/internal/tenant"
	"backoffice/internal/worker/tasks"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Log(_ context.Context, event audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) LogError(ctx context.Context, err error, description string, event audit.Event) {
	event.Success = false
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	event.Description = description
	s.Log(ctx, event)
}

func (s *recordingSink) LogWithActor(ctx context.Context, eventType audit.EventType, description string, _, _ any, actorUserID, tenantID string) {
	s.Log(ctx, audit.Event{Type: eventType, Description: description, ActorUserID: actorUserID, TenantID: tenantID, Success: true})
}

func (s *recordingSink) ofType(eventType audit.EventType) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type capturingQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *capturingQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newTestService(t *testing.T, queue TaskEnqueuer) (*Service, *recordingSink) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&PolicyDocument{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sink := &recordingSink{}
	svc := NewService(db, config.DocumentConfig{
		StoragePath: t.TempDir(),
		MaxFileSize: 1 << 20,
	}, queue, sink, nil)
	return svc, sink
}

func ctxFor(tenantID string) context.Context {
	return tenant.WithTenantContext(context.Background(), tenant.TenantContext{
		TenantID: tenantID,
		UserID:   "user-1",
	})
}

func TestIngestStoresAndSchedules(t *testing.T) {
	queue := &capturingQueue{}
	svc, sink := newTestService(t, queue)

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName:    "poliza-2026.pdf",
		ContentType: "application/pdf",
		Size:        11,
		Content:     strings.NewReader("pdf content"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if doc.ID == "" || doc.TenantID != "acme" || doc.Status != StatusPending {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.SizeBytes != 11 {
		t.Fatalf("size = %d", doc.SizeBytes)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("queued tasks = %d, want 1", len(queue.tasks))
	}
	payload, err := tasks.ParseExtractDocumentPayload(queue.tasks[0])
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.DocumentID != doc.ID || payload.TenantID != "acme" {
		t.Fatalf("payload = %+v", payload)
	}

	if events := sink.ofType(audit.EventDocumentIngested); len(events) != 1 {
		t.Fatalf("ingest events = %d, want 1", len(events))
	}
}

func TestIngestRejectsNonPDF(t *testing.T) {
	svc, _ := newTestService(t, &capturingQueue{})

	_, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "malware.exe",
		Size:     3,
		Content:  strings.NewReader("..."),
	})
	if err == nil {
		t.Fatal("non-pdf upload accepted")
	}
}

func TestIngestRejectsOversizedFile(t *testing.T) {
	svc, _ := newTestService(t, &capturingQueue{})

	_, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "big.pdf",
		Size:     2 << 20,
		Content:  strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("oversized upload accepted")
	}
}

func TestIngestSurvivesEnqueueFailure(t *testing.T) {
	queue := &capturingQueue{err: errors.New("redis down")}
	svc, _ := newTestService(t, queue)

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "poliza.pdf",
		Size:     3,
		Content:  strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("ingest must not fail on enqueue error: %v", err)
	}
	if doc.Status != StatusPending {
		t.Fatalf("status = %s", doc.Status)
	}
}

func TestIngestWithoutQueueUsesRoutedRunner(t *testing.T) {
	svc, _ := newTestService(t, nil)

	var gotID string
	svc.SetExtractRunner(func(_ context.Context, documentID string) (string, error) {
		gotID = documentID
		return "extracted text", nil
	})

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "poliza.pdf",
		Size:     3,
		Content:  strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if gotID != doc.ID {
		t.Fatalf("runner called with %q, want %q", gotID, doc.ID)
	}
}

func TestIngestWithoutQueueOrRunnerLeavesPending(t *testing.T) {
	svc, _ := newTestService(t, nil)

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "poliza.pdf",
		Size:     3,
		Content:  strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	stored, err := svc.Get(ctxFor("acme"), doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestExtractCorruptFileMarksFailed(t *testing.T) {
	svc, sink := newTestService(t, &capturingQueue{})

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "broken.pdf",
		Size:     15,
		Content:  strings.NewReader("not a real pdf!"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, err := svc.Extract(ctxFor("acme"), doc.ID); err == nil {
		t.Fatal("corrupt pdf extracted successfully")
	}

	stored, err := svc.Get(ctxFor("acme"), doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusFailed || stored.FailureReason == "" {
		t.Fatalf("stored = %+v", stored)
	}
	if events := sink.ofType(audit.EventDocumentIngestFailed); len(events) != 1 {
		t.Fatalf("failure events = %d, want 1", len(events))
	}
}

func TestDocumentsAreTenantScoped(t *testing.T) {
	svc, _ := newTestService(t, &capturingQueue{})

	doc, err := svc.Ingest(ctxFor("acme"), IngestParams{
		FileName: "poliza.pdf",
		Size:     3,
		Content:  strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, err := svc.Get(ctxFor("rival"), doc.ID); !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("cross-tenant get = %v, want not found", err)
	}
	if _, err := svc.Extract(ctxFor("rival"), doc.ID); !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("cross-tenant extract = %v, want not found", err)
	}

	docs, err := svc.List(ctxFor("rival"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("rival sees %d documents", len(docs))
	}
}
