package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names. The queue name doubles as a priority class in the worker
// configuration.
const (
	TypeExtractDocument = "document:extract"

	QueueDocuments = "documents"
)

// ExtractDocumentPayload carries everything the worker needs to rebuild the
// tenant identity and run extraction for one document.
type ExtractDocumentPayload struct {
	DocumentID string `json:"document_id"`
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
}

// NewExtractDocumentTask builds the queued task for a document extraction.
func NewExtractDocumentTask(payload ExtractDocumentPayload) (*asynq.Task, error) {
	if payload.DocumentID == "" || payload.TenantID == "" {
		return nil, fmt.Errorf("extract task needs document and tenant ids")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode extract payload: %w", err)
	}
	return asynq.NewTask(TypeExtractDocument, raw, asynq.Queue(QueueDocuments), asynq.MaxRetry(3)), nil
}

// ParseExtractDocumentPayload decodes a queued extraction task.
func ParseExtractDocumentPayload(task *asynq.Task) (ExtractDocumentPayload, error) {
	var payload ExtractDocumentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode extract payload: %w", err)
	}
	return payload, nil
}
