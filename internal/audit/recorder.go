package audit

import (
	"context"
	"encoding/json"
	"time"

	"backoffice/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// writeTimeout bounds a single audit write. A slow sink adds at most this
// much latency to the caller; it never aborts the caller's result.
const writeTimeout = 5 * time.Second

// Event is a candidate audit record produced by the business layer. The
// recorder derives category and level from Type before persisting.
type Event struct {
	Type         EventType
	TenantID     string
	ActorUserID  string
	EntityName   string
	EntityID     string
	Action       string
	Description  string
	OldValue     any
	NewValue     any
	Success      bool
	ErrorMessage string
	DurationMs   int64
}

// Recorder persists audit events. Implementations must swallow their own
// failures: none of these methods returns an error, and a failing sink must
// never alter the business outcome of the operation being audited.
type Recorder interface {
	Log(ctx context.Context, event Event)
	LogError(ctx context.Context, err error, description string, event Event)
	LogWithActor(ctx context.Context, eventType EventType, description string, oldValue, newValue any, actorUserID, tenantID string)
}

// DBRecorder writes audit events to the audit_logs table. Write failures are
// logged locally and counted, never propagated.
type DBRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDBRecorder constructs a Recorder backed by the given database.
func NewDBRecorder(db *gorm.DB, logger *zap.Logger) *DBRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBRecorder{db: db, logger: logger}
}

// Log persists the event. Once a write starts it completes even if the
// inbound request was cancelled, so a cancelled-but-partially-executed
// operation still leaves a record.
func (r *DBRecorder) Log(ctx context.Context, event Event) {
	row := r.buildRow(event)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	if err := r.db.WithContext(writeCtx).Create(row).Error; err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		r.logger.Error("audit write failed",
			zap.String("event_type", string(event.Type)),
			zap.String("tenant_id", event.TenantID),
			zap.Error(err),
		)
		return
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Type), boolLabel(event.Success)).Inc()
}

// LogError persists a failure event carrying the error message.
func (r *DBRecorder) LogError(ctx context.Context, err error, description string, event Event) {
	event.Success = false
	if err != nil && event.ErrorMessage == "" {
		event.ErrorMessage = err.Error()
	}
	if description != "" {
		event.Description = description
	}
	if event.Type == "" {
		event.Type = EventSystemError
	}
	r.Log(ctx, event)
}

// LogWithActor persists an event with explicit actor attribution and
// old/new value snapshots.
func (r *DBRecorder) LogWithActor(ctx context.Context, eventType EventType, description string, oldValue, newValue any, actorUserID, tenantID string) {
	r.Log(ctx, Event{
		Type:        eventType,
		TenantID:    tenantID,
		ActorUserID: actorUserID,
		Description: description,
		OldValue:    oldValue,
		NewValue:    newValue,
		Success:     true,
	})
}

func (r *DBRecorder) buildRow(event Event) *AuditLog {
	return &AuditLog{
		TenantID:      event.TenantID,
		ActorUserID:   event.ActorUserID,
		EventType:     string(event.Type),
		EventCategory: string(GetEventCategory(event.Type)),
		EventLevel:    string(GetEventLevel(event.Type)),
		EntityName:    event.EntityName,
		EntityID:      event.EntityID,
		Action:        event.Action,
		Description:   event.Description,
		OldValue:      marshalSnapshot(event.OldValue),
		NewValue:      marshalSnapshot(event.NewValue),
		Success:       event.Success,
		ErrorMessage:  event.ErrorMessage,
		DurationMs:    event.DurationMs,
	}
}

// marshalSnapshot serializes an opaque snapshot; a value that cannot be
// marshalled is dropped rather than failing the write.
func marshalSnapshot(value any) datatypes.JSON {
	if value == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
