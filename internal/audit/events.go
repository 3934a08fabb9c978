package audit

// EventType identifies an audit event. The taxonomy is closed: recorders
// reject nothing, but routing, categorization and levels are derived from
// these values only.
type EventType string

// Entity lifecycle events.
const (
	EventClientCreated EventType = "client.created"
	EventClientUpdated EventType = "client.updated"
	EventClientDeleted EventType = "client.deleted"

	EventBrokerCreated EventType = "broker.created"
	EventBrokerUpdated EventType = "broker.updated"
	EventBrokerDeleted EventType = "broker.deleted"

	EventCompanyCreated EventType = "company.created"
	EventCompanyUpdated EventType = "company.updated"
	EventCompanyDeleted EventType = "company.deleted"

	EventCurrencyCreated EventType = "currency.created"
	EventCurrencyUpdated EventType = "currency.updated"
	EventCurrencyDeleted EventType = "currency.deleted"

	EventPolizaCreated EventType = "poliza.created"
	EventPolizaUpdated EventType = "poliza.updated"
	EventPolizaDeleted EventType = "poliza.deleted"

	// EventDataQuery covers read operations (get, search, getall).
	EventDataQuery EventType = "data.query"
)

// Tenant configuration events.
const (
	EventTenantModeChanged       EventType = "tenant.mode.changed"
	EventTenantConfigCreated     EventType = "tenant.config.created"
	EventTenantConfigDeactivated EventType = "tenant.config.deactivated"
)

// Dispatch events.
const (
	// EventDispatchFallback records a primary backend failure recovered by
	// the fallback backend. The caller never sees the recovery except here.
	EventDispatchFallback EventType = "dispatch.fallback"
	// EventDispatchFailure records primary and fallback both failing.
	EventDispatchFailure EventType = "dispatch.failure"
	// EventMirrorFailed records a best-effort local mirror of a remote
	// write that did not stick.
	EventMirrorFailed EventType = "dispatch.mirror.failed"
)

// Document events.
const (
	EventDocumentIngested     EventType = "document.ingested"
	EventDocumentExtracted    EventType = "document.extracted"
	EventDocumentIngestFailed EventType = "document.ingest.failed"
)

// System events.
const (
	EventSystemWarning EventType = "system.warning"
	EventSystemError   EventType = "system.error"
)

// EventCategory groups event types for querying.
type EventCategory string

const (
	CategoryResource EventCategory = "resource"
	CategoryTenant   EventCategory = "tenant"
	CategoryDispatch EventCategory = "dispatch"
	CategoryDocument EventCategory = "document"
	CategorySystem   EventCategory = "system"
	CategoryData     EventCategory = "data"
)

// GetEventCategory derives the category for an event type.
func GetEventCategory(eventType EventType) EventCategory {
	switch eventType {
	case EventClientCreated, EventClientUpdated, EventClientDeleted,
		EventBrokerCreated, EventBrokerUpdated, EventBrokerDeleted,
		EventCompanyCreated, EventCompanyUpdated, EventCompanyDeleted,
		EventCurrencyCreated, EventCurrencyUpdated, EventCurrencyDeleted,
		EventPolizaCreated, EventPolizaUpdated, EventPolizaDeleted:
		return CategoryResource

	case EventTenantModeChanged, EventTenantConfigCreated, EventTenantConfigDeactivated:
		return CategoryTenant

	case EventDispatchFallback, EventDispatchFailure, EventMirrorFailed:
		return CategoryDispatch

	case EventDocumentIngested, EventDocumentExtracted, EventDocumentIngestFailed:
		return CategoryDocument

	case EventDataQuery:
		return CategoryData

	default:
		return CategorySystem
	}
}

// EventLevel grades event severity.
type EventLevel string

const (
	LevelDebug    EventLevel = "debug"
	LevelInfo     EventLevel = "info"
	LevelWarning  EventLevel = "warning"
	LevelError    EventLevel = "error"
	LevelCritical EventLevel = "critical"
)

// GetEventLevel derives the level for an event type.
func GetEventLevel(eventType EventType) EventLevel {
	switch eventType {
	case EventDataQuery:
		return LevelDebug

	case EventDispatchFallback, EventMirrorFailed, EventSystemWarning,
		EventDocumentIngestFailed:
		return LevelWarning

	case EventDispatchFailure, EventSystemError:
		return LevelError

	case EventClientDeleted, EventBrokerDeleted, EventCompanyDeleted,
		EventCurrencyDeleted, EventPolizaDeleted, EventTenantConfigDeactivated:
		return LevelWarning

	default:
		return LevelInfo
	}
}
