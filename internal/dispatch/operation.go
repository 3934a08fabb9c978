package dispatch

import "backoffice/internal/audit"

// Entity enumerates the business entities served by the dispatcher. The set
// is closed so routing tables and tests stay exhaustive and compiler-checked
// instead of matching on strings.
type Entity string

const (
	EntityClient   Entity = "client"
	EntityBroker   Entity = "broker"
	EntityCompany  Entity = "company"
	EntityCurrency Entity = "currency"
	EntityPoliza   Entity = "poliza"
	EntityDocument Entity = "document"
)

// Verb enumerates the operations supported per entity.
type Verb string

const (
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
	VerbSearch Verb = "search"
	VerbGetAll Verb = "getall"
	// VerbExtract is the document-intelligence verb: text extraction from
	// scanned policy documents. It is never delegated to the partner system.
	VerbExtract Verb = "extract"
)

// Operation describes one routed business operation. It exists only for
// routing decisions and audit correlation; it is never persisted.
type Operation struct {
	Entity     Entity
	Verb       Verb
	Identifier string
}

// Label renders the operation as "entity.verb" for logs and audit entries.
func (o Operation) Label() string {
	return string(o.Entity) + "." + string(o.Verb)
}

// IsDocumentIntelligence reports whether this operation belongs to the
// document-processing pipeline, which is always served locally.
func (o Operation) IsDocumentIntelligence() bool {
	return o.Entity == EntityDocument || o.Verb == VerbExtract
}

// IsMutation reports whether the operation changes state.
func (o Operation) IsMutation() bool {
	switch o.Verb {
	case VerbCreate, VerbUpdate, VerbDelete:
		return true
	default:
		return false
	}
}

var mutationEvents = map[Entity]map[Verb]audit.EventType{
	EntityClient: {
		VerbCreate: audit.EventClientCreated,
		VerbUpdate: audit.EventClientUpdated,
		VerbDelete: audit.EventClientDeleted,
	},
	EntityBroker: {
		VerbCreate: audit.EventBrokerCreated,
		VerbUpdate: audit.EventBrokerUpdated,
		VerbDelete: audit.EventBrokerDeleted,
	},
	EntityCompany: {
		VerbCreate: audit.EventCompanyCreated,
		VerbUpdate: audit.EventCompanyUpdated,
		VerbDelete: audit.EventCompanyDeleted,
	},
	EntityCurrency: {
		VerbCreate: audit.EventCurrencyCreated,
		VerbUpdate: audit.EventCurrencyUpdated,
		VerbDelete: audit.EventCurrencyDeleted,
	},
	EntityPoliza: {
		VerbCreate: audit.EventPolizaCreated,
		VerbUpdate: audit.EventPolizaUpdated,
		VerbDelete: audit.EventPolizaDeleted,
	},
}

// EventTypeFor maps a mutating operation onto its audit event type. Read
// operations map onto the generic query event.
func EventTypeFor(o Operation) audit.EventType {
	if verbs, ok := mutationEvents[o.Entity]; ok {
		if eventType, ok := verbs[o.Verb]; ok {
			return eventType
		}
	}
	return audit.EventDataQuery
}
