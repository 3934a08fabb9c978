package audit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// LogQuery filters audit log reads. Reads exist for operators only; the
// dispatch layer never consumes its own trail.
type LogQuery struct {
	TenantID      string     `json:"tenant_id"`
	ActorUserID   string     `json:"actor_user_id"`
	EventTypes    []string   `json:"event_types"`
	EventCategory string     `json:"event_category"`
	EventLevel    string     `json:"event_level"`
	EntityName    string     `json:"entity_name"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

// QueryLogs returns matching audit records, newest first, with the total
// match count.
func (r *DBRecorder) QueryLogs(ctx context.Context, query LogQuery) ([]*AuditLog, int64, error) {
	var logs []*AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&AuditLog{})

	if query.TenantID != "" {
		db = db.Where("tenant_id = ?", query.TenantID)
	}
	if query.ActorUserID != "" {
		db = db.Where("actor_user_id = ?", query.ActorUserID)
	}
	if len(query.EventTypes) > 0 {
		db = db.Where("event_type IN ?", query.EventTypes)
	}
	if query.EventCategory != "" {
		db = db.Where("event_category = ?", query.EventCategory)
	}
	if query.EventLevel != "" {
		db = db.Where("event_level = ?", query.EventLevel)
	}
	if query.EntityName != "" {
		db = db.Where("entity_name = ?", query.EntityName)
	}
	if query.StartTime != nil {
		db = db.Where("created_at >= ?", query.StartTime)
	}
	if query.EndTime != nil {
		db = db.Where("created_at <= ?", query.EndTime)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	err := db.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// ErrRecordNotFound re-exported for handler convenience.
var ErrRecordNotFound = gorm.ErrRecordNotFound

// GetLogByID returns one audit record.
func (r *DBRecorder) GetLogByID(ctx context.Context, id string) (*AuditLog, error) {
	var log AuditLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}
