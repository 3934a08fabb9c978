package dispatch

import "backoffice/internal/tenant"

// Backend identifies which side serves an operation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendRemote Backend = "remote"
)

// Decision is the outcome of a routing evaluation. SafeDefault is set when
// the tenant's stored mode was unrecognized and the router fell back to the
// local side; callers use it to emit a warning audit entry.
type Decision struct {
	Backend     Backend
	SafeDefault bool
}

// Decide maps a tenant routing configuration and an operation onto a backend.
// It is pure: no I/O, no logging, and it is total over its inputs. A nil
// configuration routes locally, which keeps the dispatcher operable even when
// tenant resolution is misconfigured upstream.
func Decide(cfg *tenant.RoutingConfig, op Operation) Decision {
	if op.IsDocumentIntelligence() {
		return Decision{Backend: BackendLocal}
	}
	if cfg == nil {
		return Decision{Backend: BackendLocal, SafeDefault: true}
	}
	switch cfg.Mode {
	case tenant.ModeLocal:
		return Decision{Backend: BackendLocal}
	case tenant.ModeRemote:
		return Decision{Backend: BackendRemote}
	default:
		return Decision{Backend: BackendLocal, SafeDefault: true}
	}
}
