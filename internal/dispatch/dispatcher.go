package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/audit"
	"backoffice/internal/entities"
	"backoffice/internal/metrics"
	"backoffice/internal/tenant"
)

const (
	defaultTimeout = 30 * time.Second
	mirrorTimeout  = 10 * time.Second
)

// RemoteClient is the surface the partner system must provide. One method
// pair per entity and verb keeps call sites compiler-checked instead of
// funnelling everything through a stringly-typed gateway.
type RemoteClient interface {
	GetClient(ctx context.Context, id int64) (*entities.Client, error)
	CreateClient(ctx context.Context, client *entities.Client) (*entities.Client, error)
	UpdateClient(ctx context.Context, client *entities.Client) (*entities.Client, error)
	DeleteClient(ctx context.Context, id int64) error
	SearchClients(ctx context.Context, query string) ([]*entities.Client, error)
	ListClients(ctx context.Context) ([]*entities.Client, error)

	GetBroker(ctx context.Context, id int64) (*entities.Broker, error)
	CreateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error)
	UpdateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error)
	DeleteBroker(ctx context.Context, id int64) error
	SearchBrokers(ctx context.Context, query string) ([]*entities.Broker, error)
	ListBrokers(ctx context.Context) ([]*entities.Broker, error)

	GetCompany(ctx context.Context, id int64) (*entities.Company, error)
	CreateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error)
	UpdateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	SearchCompanies(ctx context.Context, query string) ([]*entities.Company, error)
	ListCompanies(ctx context.Context) ([]*entities.Company, error)

	GetCurrency(ctx context.Context, id int64) (*entities.Currency, error)
	CreateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error)
	UpdateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error)
	DeleteCurrency(ctx context.Context, id int64) error
	SearchCurrencies(ctx context.Context, query string) ([]*entities.Currency, error)
	ListCurrencies(ctx context.Context) ([]*entities.Currency, error)

	GetPoliza(ctx context.Context, id int64) (*entities.Poliza, error)
	CreatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error)
	UpdatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error)
	DeletePoliza(ctx context.Context, id int64) error
	SearchPolizas(ctx context.Context, query string) ([]*entities.Poliza, error)
	ListPolizas(ctx context.Context) ([]*entities.Poliza, error)
}

// LocalStore is the local persistence surface. It mirrors RemoteClient and
// adds replication hooks used after successful remote writes.
type LocalStore interface {
	GetClient(ctx context.Context, id int64) (*entities.Client, error)
	CreateClient(ctx context.Context, client *entities.Client) (*entities.Client, error)
	UpdateClient(ctx context.Context, client *entities.Client) (*entities.Client, error)
	DeleteClient(ctx context.Context, id int64) error
	SearchClients(ctx context.Context, query string) ([]*entities.Client, error)
	ListClients(ctx context.Context) ([]*entities.Client, error)

	GetBroker(ctx context.Context, id int64) (*entities.Broker, error)
	CreateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error)
	UpdateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error)
	DeleteBroker(ctx context.Context, id int64) error
	SearchBrokers(ctx context.Context, query string) ([]*entities.Broker, error)
	ListBrokers(ctx context.Context) ([]*entities.Broker, error)

	GetCompany(ctx context.Context, id int64) (*entities.Company, error)
	CreateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error)
	UpdateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	SearchCompanies(ctx context.Context, query string) ([]*entities.Company, error)
	ListCompanies(ctx context.Context) ([]*entities.Company, error)

	GetCurrency(ctx context.Context, id int64) (*entities.Currency, error)
	CreateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error)
	UpdateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error)
	DeleteCurrency(ctx context.Context, id int64) error
	SearchCurrencies(ctx context.Context, query string) ([]*entities.Currency, error)
	ListCurrencies(ctx context.Context) ([]*entities.Currency, error)

	GetPoliza(ctx context.Context, id int64) (*entities.Poliza, error)
	CreatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error)
	UpdatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error)
	DeletePoliza(ctx context.Context, id int64) error
	SearchPolizas(ctx context.Context, query string) ([]*entities.Poliza, error)
	ListPolizas(ctx context.Context) ([]*entities.Poliza, error)

	// Mirror upserts a copy of a record written on the remote side,
	// preserving the remote-assigned identifier.
	Mirror(ctx context.Context, record any) error
	// MirrorDelete removes the local copy of a record deleted remotely.
	MirrorDelete(ctx context.Context, model any, id int64) error
}

// DocumentExtractor serves the document-intelligence verb. Extraction runs
// against local storage regardless of the tenant's routing mode.
type DocumentExtractor interface {
	Extract(ctx context.Context, documentID string) (string, error)
}

// Config wires a Dispatcher. Extractor may be nil when the document pipeline
// is disabled.
type Config struct {
	Policy          RoutingPolicy
	Remote          RemoteClient
	Local           LocalStore
	Extractor       DocumentExtractor
	Recorder        audit.Recorder
	Logger          *zap.Logger
	FallbackEnabled bool
	MirrorWrites    bool
}

// Dispatcher routes every entity operation to the local store or the partner
// system according to the tenant's routing configuration. Reads routed
// remotely fall back to local storage on failure; mutations run on exactly
// one side, with successful remote writes mirrored locally best effort.
type Dispatcher struct {
	policy       RoutingPolicy
	remote       RemoteClient
	local        LocalStore
	extractor    DocumentExtractor
	executor     *Executor
	recorder     audit.Recorder
	logger       *zap.Logger
	mirrorWrites bool
}

func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		policy:       cfg.Policy,
		remote:       cfg.Remote,
		local:        cfg.Local,
		extractor:    cfg.Extractor,
		executor:     NewExecutor(cfg.Recorder, logger, cfg.FallbackEnabled),
		recorder:     cfg.Recorder,
		logger:       logger,
		mirrorWrites: cfg.MirrorWrites,
	}
}

// routing carries everything a dispatched call needs after the decision step.
type routing struct {
	tenantID      string
	decision      Decision
	timeout       time.Duration
	correlationID string
}

func (d *Dispatcher) prepare(ctx context.Context, op Operation) (routing, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return routing{}, err
	}

	cfg, err := d.policy.ConfigFor(ctx, tenantID)
	if err != nil {
		return routing{}, fmt.Errorf("resolve routing for tenant %s: %w", tenantID, err)
	}

	decision := Decide(cfg, op)
	metrics.DispatchDecisionsTotal.WithLabelValues(string(op.Entity), string(op.Verb), string(decision.Backend), tenantID).Inc()

	r := routing{
		tenantID:      tenantID,
		decision:      decision,
		timeout:       defaultTimeout,
		correlationID: uuid.NewString(),
	}
	if cfg != nil {
		r.timeout = cfg.Timeout()
	}

	if decision.SafeDefault {
		metrics.DispatchSafeDefaultsTotal.WithLabelValues(tenantID).Inc()
		mode := ""
		if cfg != nil {
			mode = string(cfg.Mode)
		}
		d.logger.Warn("unrecognized routing mode, defaulting to local",
			zap.String("tenant_id", tenantID),
			zap.String("mode", mode),
			zap.String("operation", op.Label()))
		d.executor.emit(func() {
			d.recorder.Log(ctx, audit.Event{
				Type:        audit.EventSystemWarning,
				TenantID:    tenantID,
				Description: fmt.Sprintf("unrecognized routing mode %q, %s served locally (correlation %s)", mode, op.Label(), r.correlationID),
				EntityName:  string(op.Entity),
				EntityID:    op.Identifier,
				Action:      string(op.Verb),
				Success:     true,
			})
		})
	}
	return r, nil
}

// dispatchRead routes a read. Remote reads fall back to the local store when
// the partner call fails and fallback is enabled.
func dispatchRead[T any](ctx context.Context, d *Dispatcher, op Operation, remote, local func(context.Context) (T, error)) (T, error) {
	r, err := d.prepare(ctx, op)
	if err != nil {
		var zero T
		return zero, err
	}

	primary := local
	var fallback func(context.Context) (T, error)
	if r.decision.Backend == BackendRemote {
		primary = remote
		fallback = local
	}
	return ExecuteWithFallback(ctx, d.executor, op, r.tenantID, r.correlationID, r.timeout, audit.EventDataQuery, primary, fallback)
}

// dispatchWrite routes a mutation to exactly one side. Mutations are never
// retried on the other side: replaying a half-applied write could duplicate
// its effects. Successful remote writes are mirrored into local storage.
func dispatchWrite[T any](ctx context.Context, d *Dispatcher, op Operation, remote, local func(context.Context) (T, error), mirror func(context.Context, T) error) (T, error) {
	r, err := d.prepare(ctx, op)
	if err != nil {
		var zero T
		return zero, err
	}

	action := local
	if r.decision.Backend == BackendRemote {
		action = remote
	}
	value, err := ExecuteWithAudit(ctx, d.executor, op, r.tenantID, r.correlationID, r.timeout, EventTypeFor(op), nil, action)
	if err != nil {
		var zero T
		return zero, err
	}

	if r.decision.Backend == BackendRemote && d.mirrorWrites && mirror != nil {
		d.runMirror(ctx, op, r, func(mctx context.Context) error { return mirror(mctx, value) })
	}
	return value, nil
}

// runMirror replicates a remote write into local storage. Failures are
// audited and counted but never surfaced to the caller.
func (d *Dispatcher) runMirror(ctx context.Context, op Operation, r routing, fn func(context.Context) error) {
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()

	err := fn(mctx)
	if err == nil {
		return
	}

	merr := &MirrorError{Op: op, Cause: err}
	metrics.MirrorFailuresTotal.WithLabelValues(string(op.Entity)).Inc()
	d.logger.Warn("local mirror of remote write failed",
		zap.String("operation", op.Label()),
		zap.String("tenant_id", r.tenantID),
		zap.String("correlation_id", r.correlationID),
		zap.Error(err))
	d.executor.emit(func() {
		d.recorder.LogError(mctx, merr,
			fmt.Sprintf("local mirror of %s failed (correlation %s)", op.Label(), r.correlationID),
			audit.Event{
				Type:       audit.EventMirrorFailed,
				TenantID:   r.tenantID,
				EntityName: string(op.Entity),
				EntityID:   op.Identifier,
				Action:     string(op.Verb),
			})
	})
}

func idLabel(id int64) string {
	return strconv.FormatInt(id, 10)
}

// noResult adapts an error-only action to the generic execution helpers.
func noResult(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

// ----- Client -----

func (d *Dispatcher) GetClient(ctx context.Context, id int64) (*entities.Client, error) {
	op := Operation{Entity: EntityClient, Verb: VerbGet, Identifier: idLabel(id)}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) (*entities.Client, error) { return d.remote.GetClient(ctx, id) },
		func(ctx context.Context) (*entities.Client, error) { return d.local.GetClient(ctx, id) })
}

func (d *Dispatcher) CreateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	op := Operation{Entity: EntityClient, Verb: VerbCreate}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Client, error) { return d.remote.CreateClient(ctx, client) },
		func(ctx context.Context) (*entities.Client, error) { return d.local.CreateClient(ctx, client) },
		func(ctx context.Context, created *entities.Client) error { return d.local.Mirror(ctx, created) })
}

func (d *Dispatcher) UpdateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	op := Operation{Entity: EntityClient, Verb: VerbUpdate, Identifier: idLabel(client.ID)}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Client, error) { return d.remote.UpdateClient(ctx, client) },
		func(ctx context.Context) (*entities.Client, error) { return d.local.UpdateClient(ctx, client) },
		func(ctx context.Context, updated *entities.Client) error { return d.local.Mirror(ctx, updated) })
}

func (d *Dispatcher) DeleteClient(ctx context.Context, id int64) error {
	op := Operation{Entity: EntityClient, Verb: VerbDelete, Identifier: idLabel(id)}
	_, err := dispatchWrite(ctx, d, op,
		noResult(func(ctx context.Context) error { return d.remote.DeleteClient(ctx, id) }),
		noResult(func(ctx context.Context) error { return d.local.DeleteClient(ctx, id) }),
		func(ctx context.Context, _ struct{}) error {
			return d.local.MirrorDelete(ctx, &entities.Client{}, id)
		})
	return err
}

func (d *Dispatcher) SearchClients(ctx context.Context, query string) ([]*entities.Client, error) {
	op := Operation{Entity: EntityClient, Verb: VerbSearch}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Client, error) { return d.remote.SearchClients(ctx, query) },
		func(ctx context.Context) ([]*entities.Client, error) { return d.local.SearchClients(ctx, query) })
}

func (d *Dispatcher) ListClients(ctx context.Context) ([]*entities.Client, error) {
	op := Operation{Entity: EntityClient, Verb: VerbGetAll}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Client, error) { return d.remote.ListClients(ctx) },
		func(ctx context.Context) ([]*entities.Client, error) { return d.local.ListClients(ctx) })
}

// ----- Broker -----

func (d *Dispatcher) GetBroker(ctx context.Context, id int64) (*entities.Broker, error) {
	op := Operation{Entity: EntityBroker, Verb: VerbGet, Identifier: idLabel(id)}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) (*entities.Broker, error) { return d.remote.GetBroker(ctx, id) },
		func(ctx context.Context) (*entities.Broker, error) { return d.local.GetBroker(ctx, id) })
}

func (d *Dispatcher) CreateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	op := Operation{Entity: EntityBroker, Verb: VerbCreate}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Broker, error) { return d.remote.CreateBroker(ctx, broker) },
		func(ctx context.Context) (*entities.Broker, error) { return d.local.CreateBroker(ctx, broker) },
		func(ctx context.Context, created *entities.Broker) error { return d.local.Mirror(ctx, created) })
}

func (d *Dispatcher) UpdateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	op := Operation{Entity: EntityBroker, Verb: VerbUpdate, Identifier: idLabel(broker.ID)}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Broker, error) { return d.remote.UpdateBroker(ctx, broker) },
		func(ctx context.Context) (*entities.Broker, error) { return d.local.UpdateBroker(ctx, broker) },
		func(ctx context.Context, updated *entities.Broker) error { return d.local.Mirror(ctx, updated) })
}

func (d *Dispatcher) DeleteBroker(ctx context.Context, id int64) error {
	op := Operation{Entity: EntityBroker, Verb: VerbDelete, Identifier: idLabel(id)}
	_, err := dispatchWrite(ctx, d, op,
		noResult(func(ctx context.Context) error { return d.remote.DeleteBroker(ctx, id) }),
		noResult(func(ctx context.Context) error { return d.local.DeleteBroker(ctx, id) }),
		func(ctx context.Context, _ struct{}) error {
			return d.local.MirrorDelete(ctx, &entities.Broker{}, id)
		})
	return err
}

func (d *Dispatcher) SearchBrokers(ctx context.Context, query string) ([]*entities.Broker, error) {
	op := Operation{Entity: EntityBroker, Verb: VerbSearch}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Broker, error) { return d.remote.SearchBrokers(ctx, query) },
		func(ctx context.Context) ([]*entities.Broker, error) { return d.local.SearchBrokers(ctx, query) })
}

func (d *Dispatcher) ListBrokers(ctx context.Context) ([]*entities.Broker, error) {
	op := Operation{Entity: EntityBroker, Verb: VerbGetAll}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Broker, error) { return d.remote.ListBrokers(ctx) },
		func(ctx context.Context) ([]*entities.Broker, error) { return d.local.ListBrokers(ctx) })
}

// ----- Company -----

func (d *Dispatcher) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	op := Operation{Entity: EntityCompany, Verb: VerbGet, Identifier: idLabel(id)}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) (*entities.Company, error) { return d.remote.GetCompany(ctx, id) },
		func(ctx context.Context) (*entities.Company, error) { return d.local.GetCompany(ctx, id) })
}

func (d *Dispatcher) CreateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	op := Operation{Entity: EntityCompany, Verb: VerbCreate}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Company, error) { return d.remote.CreateCompany(ctx, company) },
		func(ctx context.Context) (*entities.Company, error) { return d.local.CreateCompany(ctx, company) },
		func(ctx context.Context, created *entities.Company) error { return d.local.Mirror(ctx, created) })
}

func (d *Dispatcher) UpdateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	op := Operation{Entity: EntityCompany, Verb: VerbUpdate, Identifier: idLabel(company.ID)}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Company, error) { return d.remote.UpdateCompany(ctx, company) },
		func(ctx context.Context) (*entities.Company, error) { return d.local.UpdateCompany(ctx, company) },
		func(ctx context.Context, updated *entities.Company) error { return d.local.Mirror(ctx, updated) })
}

func (d *Dispatcher) DeleteCompany(ctx context.Context, id int64) error {
	op := Operation{Entity: EntityCompany, Verb: VerbDelete, Identifier: idLabel(id)}
	_, err := dispatchWrite(ctx, d, op,
		noResult(func(ctx context.Context) error { return d.remote.DeleteCompany(ctx, id) }),
		noResult(func(ctx context.Context) error { return d.local.DeleteCompany(ctx, id) }),
		func(ctx context.Context, _ struct{}) error {
			return d.local.MirrorDelete(ctx, &entities.Company{}, id)
		})
	return err
}

func (d *Dispatcher) SearchCompanies(ctx context.Context, query string) ([]*entities.Company, error) {
	op := Operation{Entity: EntityCompany, Verb: VerbSearch}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Company, error) { return d.remote.SearchCompanies(ctx, query) },
		func(ctx context.Context) ([]*entities.Company, error) { return d.local.SearchCompanies(ctx, query) })
}

func (d *Dispatcher) ListCompanies(ctx context.Context) ([]*entities.Company, error) {
	op := Operation{Entity: EntityCompany, Verb: VerbGetAll}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Company, error) { return d.remote.ListCompanies(ctx) },
		func(ctx context.Context) ([]*entities.Company, error) { return d.local.ListCompanies(ctx) })
}

// ----- Currency -----

func (d *Dispatcher) GetCurrency(ctx context.Context, id int64) (*entities.Currency, error) {
	op := Operation{Entity: EntityCurrency, Verb: VerbGet, Identifier: idLabel(id)}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) (*entities.Currency, error) { return d.remote.GetCurrency(ctx, id) },
		func(ctx context.Context) (*entities.Currency, error) { return d.local.GetCurrency(ctx, id) })
}

func (d *Dispatcher) CreateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	op := Operation{Entity: EntityCurrency, Verb: VerbCreate}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Currency, error) { return d.remote.CreateCurrency(ctx, currency) },
		func(ctx context.Context) (*entities.Currency, error) { return d.local.CreateCurrency(ctx, currency) },
		func(ctx context.Context, created *entities.Currency) error { return d.local.Mirror(ctx, created) })
}

func (d *Dispatcher) UpdateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	op := Operation{Entity: EntityCurrency, Verb: VerbUpdate, Identifier: idLabel(currency.ID)}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Currency, error) { return d.remote.UpdateCurrency(ctx, currency) },
		func(ctx context.Context) (*entities.Currency, error) { return d.local.UpdateCurrency(ctx, currency) },
		func(ctx context.Context, updated *entities.Currency) error { return d.local.Mirror(ctx, updated) })
}

func (d *Dispatcher) DeleteCurrency(ctx context.Context, id int64) error {
	op := Operation{Entity: EntityCurrency, Verb: VerbDelete, Identifier: idLabel(id)}
	_, err := dispatchWrite(ctx, d, op,
		noResult(func(ctx context.Context) error { return d.remote.DeleteCurrency(ctx, id) }),
		noResult(func(ctx context.Context) error { return d.local.DeleteCurrency(ctx, id) }),
		func(ctx context.Context, _ struct{}) error {
			return d.local.MirrorDelete(ctx, &entities.Currency{}, id)
		})
	return err
}

func (d *Dispatcher) SearchCurrencies(ctx context.Context, query string) ([]*entities.Currency, error) {
	op := Operation{Entity: EntityCurrency, Verb: VerbSearch}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Currency, error) { return d.remote.SearchCurrencies(ctx, query) },
		func(ctx context.Context) ([]*entities.Currency, error) { return d.local.SearchCurrencies(ctx, query) })
}

func (d *Dispatcher) ListCurrencies(ctx context.Context) ([]*entities.Currency, error) {
	op := Operation{Entity: EntityCurrency, Verb: VerbGetAll}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Currency, error) { return d.remote.ListCurrencies(ctx) },
		func(ctx context.Context) ([]*entities.Currency, error) { return d.local.ListCurrencies(ctx) })
}

// ----- Poliza -----

func (d *Dispatcher) GetPoliza(ctx context.Context, id int64) (*entities.Poliza, error) {
	op := Operation{Entity: EntityPoliza, Verb: VerbGet, Identifier: idLabel(id)}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) (*entities.Poliza, error) { return d.remote.GetPoliza(ctx, id) },
		func(ctx context.Context) (*entities.Poliza, error) { return d.local.GetPoliza(ctx, id) })
}

func (d *Dispatcher) CreatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	op := Operation{Entity: EntityPoliza, Verb: VerbCreate}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Poliza, error) { return d.remote.CreatePoliza(ctx, poliza) },
		func(ctx context.Context) (*entities.Poliza, error) { return d.local.CreatePoliza(ctx, poliza) },
		func(ctx context.Context, created *entities.Poliza) error { return d.local.Mirror(ctx, created) })
}

func (d *Dispatcher) UpdatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	op := Operation{Entity: EntityPoliza, Verb: VerbUpdate, Identifier: idLabel(poliza.ID)}
	return dispatchWrite(ctx, d, op,
		func(ctx context.Context) (*entities.Poliza, error) { return d.remote.UpdatePoliza(ctx, poliza) },
		func(ctx context.Context) (*entities.Poliza, error) { return d.local.UpdatePoliza(ctx, poliza) },
		func(ctx context.Context, updated *entities.Poliza) error { return d.local.Mirror(ctx, updated) })
}

func (d *Dispatcher) DeletePoliza(ctx context.Context, id int64) error {
	op := Operation{Entity: EntityPoliza, Verb: VerbDelete, Identifier: idLabel(id)}
	_, err := dispatchWrite(ctx, d, op,
		noResult(func(ctx context.Context) error { return d.remote.DeletePoliza(ctx, id) }),
		noResult(func(ctx context.Context) error { return d.local.DeletePoliza(ctx, id) }),
		func(ctx context.Context, _ struct{}) error {
			return d.local.MirrorDelete(ctx, &entities.Poliza{}, id)
		})
	return err
}

func (d *Dispatcher) SearchPolizas(ctx context.Context, query string) ([]*entities.Poliza, error) {
	op := Operation{Entity: EntityPoliza, Verb: VerbSearch}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Poliza, error) { return d.remote.SearchPolizas(ctx, query) },
		func(ctx context.Context) ([]*entities.Poliza, error) { return d.local.SearchPolizas(ctx, query) })
}

func (d *Dispatcher) ListPolizas(ctx context.Context) ([]*entities.Poliza, error) {
	op := Operation{Entity: EntityPoliza, Verb: VerbGetAll}
	return dispatchRead(ctx, d, op,
		func(ctx context.Context) ([]*entities.Poliza, error) { return d.remote.ListPolizas(ctx) },
		func(ctx context.Context) ([]*entities.Poliza, error) { return d.local.ListPolizas(ctx) })
}

// ----- Document intelligence -----

// ExtractDocument runs text extraction for an ingested document. The routing
// decision always lands on the local side, whatever the tenant's mode.
func (d *Dispatcher) ExtractDocument(ctx context.Context, documentID string) (string, error) {
	if d.extractor == nil {
		return "", fmt.Errorf("document extraction is not configured")
	}
	op := Operation{Entity: EntityDocument, Verb: VerbExtract, Identifier: documentID}
	r, err := d.prepare(ctx, op)
	if err != nil {
		return "", err
	}
	return ExecuteWithAudit(ctx, d.executor, op, r.tenantID, r.correlationID, r.timeout, audit.EventDocumentExtracted, nil,
		func(ctx context.Context) (string, error) { return d.extractor.Extract(ctx, documentID) })
}
