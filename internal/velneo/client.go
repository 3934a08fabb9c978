package velneo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/entities"
	"backoffice/internal/metrics"
	"backoffice/internal/tenant"
	"backoffice/pkg/httputil"
)

// ConfigResolver supplies the per-tenant routing configuration, which carries
// the tenant's partner endpoint and credential.
type ConfigResolver interface {
	Resolve(ctx context.Context, tenantID string) (*tenant.RoutingConfig, error)
}

// Client talks to the Velneo partner API. Each tenant may point at its own
// endpoint with its own credential; sessions are cached per tenant, endpoint
// and credential so connection pools are reused across requests while a
// credential rotation or endpoint move takes effect on the next request.
type Client struct {
	mu       sync.Mutex
	sessions map[string]*httputil.Client
	resolver ConfigResolver
	defaults config.VelneoConfig
	logger   *zap.Logger
}

func NewClient(defaults config.VelneoConfig, resolver ConfigResolver, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		sessions: make(map[string]*httputil.Client),
		resolver: resolver,
		defaults: defaults,
		logger:   logger,
	}
}

// session resolves the tenant's endpoint and returns a configured HTTP
// client plus the base URL to build paths against.
func (c *Client) session(ctx context.Context) (*httputil.Client, string, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, "", err
	}
	cfg, err := c.resolver.Resolve(ctx, tenantID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve partner endpoint for tenant %s: %w", tenantID, err)
	}

	base := cfg.BaseURL
	if base == "" {
		base = c.defaults.BaseURL
	}
	if base == "" {
		return nil, "", fmt.Errorf("tenant %s has no partner endpoint configured", tenantID)
	}
	credential := cfg.Credential
	if credential == "" {
		credential = c.defaults.APIKey
	}

	retries := 0
	if cfg.RetryEnabled {
		retries = c.defaults.MaxRetries
	}
	timeout := cfg.Timeout()
	if c.defaults.TimeoutSeconds > 0 && timeout > time.Duration(c.defaults.TimeoutSeconds)*time.Second {
		timeout = time.Duration(c.defaults.TimeoutSeconds) * time.Second
	}

	key := sessionKey(tenantID, base, credential)

	c.mu.Lock()
	defer c.mu.Unlock()
	if session, ok := c.sessions[key]; ok {
		return session, base, nil
	}
	// A miss with existing entries for this tenant means its endpoint or
	// credential changed; drop the superseded sessions.
	for k := range c.sessions {
		if strings.HasPrefix(k, tenantID+"|") {
			delete(c.sessions, k)
		}
	}
	session := httputil.NewClient(
		httputil.WithTimeout(timeout),
		httputil.WithRetries(retries),
		httputil.WithHeaders(map[string]string{
			"Authorization": "Bearer " + credential,
			"X-Tenant-ID":   tenantID,
		}),
	)
	c.sessions[key] = session
	return session, base, nil
}

// sessionKey ties a cached session to the exact endpoint and credential it
// was built with.
func sessionKey(tenantID, base, credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return tenantID + "|" + base + "|" + hex.EncodeToString(sum[:8])
}

func observe(endpoint string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if httputil.IsNotFound(err) {
			status = "not_found"
		}
	}
	metrics.VelneoRequestsTotal.WithLabelValues(endpoint, status).Inc()
	metrics.VelneoRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// mapErr converts partner 404s into the shared not-found sentinel so callers
// treat both sides uniformly.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if httputil.IsNotFound(err) {
		return fmt.Errorf("partner record: %w", tenant.ErrNotFound)
	}
	return err
}

func fetchOne[T any](ctx context.Context, c *Client, path string, id int64) (*T, error) {
	session, base, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out T
	err = session.GetJSON(ctx, base+"/api/v1/"+path+"/"+strconv.FormatInt(id, 10), &out)
	observe(path+".get", start, err)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func fetchList[T any](ctx context.Context, c *Client, path, rawQuery string) ([]*T, error) {
	session, base, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	url := base + "/api/v1/" + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	start := time.Now()
	var out []*T
	err = session.GetJSON(ctx, url, &out)
	observe(path+".list", start, err)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func createOne[T any](ctx context.Context, c *Client, path string, in *T) (*T, error) {
	session, base, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out T
	err = session.PostJSON(ctx, base+"/api/v1/"+path, in, &out)
	observe(path+".create", start, err)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func updateOne[T any](ctx context.Context, c *Client, path string, id int64, in *T) (*T, error) {
	session, base, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out T
	err = session.PutJSON(ctx, base+"/api/v1/"+path+"/"+strconv.FormatInt(id, 10), in, &out)
	observe(path+".update", start, err)
	if err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (c *Client) remove(ctx context.Context, path string, id int64) error {
	session, base, err := c.session(ctx)
	if err != nil {
		return err
	}
	start := time.Now()
	err = session.Delete(ctx, base+"/api/v1/"+path+"/"+strconv.FormatInt(id, 10))
	observe(path+".delete", start, err)
	return mapErr(err)
}

func searchQuery(term string) string {
	return "q=" + url.QueryEscape(term)
}

// ----- Client -----

func (c *Client) GetClient(ctx context.Context, id int64) (*entities.Client, error) {
	return fetchOne[entities.Client](ctx, c, "clients", id)
}

func (c *Client) CreateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	return createOne(ctx, c, "clients", client)
}

func (c *Client) UpdateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	return updateOne(ctx, c, "clients", client.ID, client)
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return c.remove(ctx, "clients", id)
}

func (c *Client) SearchClients(ctx context.Context, term string) ([]*entities.Client, error) {
	return fetchList[entities.Client](ctx, c, "clients", searchQuery(term))
}

func (c *Client) ListClients(ctx context.Context) ([]*entities.Client, error) {
	return fetchList[entities.Client](ctx, c, "clients", "")
}

// ----- Broker -----

func (c *Client) GetBroker(ctx context.Context, id int64) (*entities.Broker, error) {
	return fetchOne[entities.Broker](ctx, c, "brokers", id)
}

func (c *Client) CreateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	return createOne(ctx, c, "brokers", broker)
}

func (c *Client) UpdateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	return updateOne(ctx, c, "brokers", broker.ID, broker)
}

func (c *Client) DeleteBroker(ctx context.Context, id int64) error {
	return c.remove(ctx, "brokers", id)
}

func (c *Client) SearchBrokers(ctx context.Context, term string) ([]*entities.Broker, error) {
	return fetchList[entities.Broker](ctx, c, "brokers", searchQuery(term))
}

func (c *Client) ListBrokers(ctx context.Context) ([]*entities.Broker, error) {
	return fetchList[entities.Broker](ctx, c, "brokers", "")
}

// ----- Company -----

func (c *Client) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	return fetchOne[entities.Company](ctx, c, "companies", id)
}

func (c *Client) CreateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	return createOne(ctx, c, "companies", company)
}

func (c *Client) UpdateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	return updateOne(ctx, c, "companies", company.ID, company)
}

func (c *Client) DeleteCompany(ctx context.Context, id int64) error {
	return c.remove(ctx, "companies", id)
}

func (c *Client) SearchCompanies(ctx context.Context, term string) ([]*entities.Company, error) {
	return fetchList[entities.Company](ctx, c, "companies", searchQuery(term))
}

func (c *Client) ListCompanies(ctx context.Context) ([]*entities.Company, error) {
	return fetchList[entities.Company](ctx, c, "companies", "")
}

// ----- Currency -----

func (c *Client) GetCurrency(ctx context.Context, id int64) (*entities.Currency, error) {
	return fetchOne[entities.Currency](ctx, c, "currencies", id)
}

func (c *Client) CreateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	return createOne(ctx, c, "currencies", currency)
}

func (c *Client) UpdateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	return updateOne(ctx, c, "currencies", currency.ID, currency)
}

func (c *Client) DeleteCurrency(ctx context.Context, id int64) error {
	return c.remove(ctx, "currencies", id)
}

func (c *Client) SearchCurrencies(ctx context.Context, term string) ([]*entities.Currency, error) {
	return fetchList[entities.Currency](ctx, c, "currencies", searchQuery(term))
}

func (c *Client) ListCurrencies(ctx context.Context) ([]*entities.Currency, error) {
	return fetchList[entities.Currency](ctx, c, "currencies", "")
}

// ----- Poliza -----

func (c *Client) GetPoliza(ctx context.Context, id int64) (*entities.Poliza, error) {
	return fetchOne[entities.Poliza](ctx, c, "polizas", id)
}

func (c *Client) CreatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	return createOne(ctx, c, "polizas", poliza)
}

func (c *Client) UpdatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	return updateOne(ctx, c, "polizas", poliza.ID, poliza)
}

func (c *Client) DeletePoliza(ctx context.Context, id int64) error {
	return c.remove(ctx, "polizas", id)
}

func (c *Client) SearchPolizas(ctx context.Context, term string) ([]*entities.Poliza, error) {
	return fetchList[entities.Poliza](ctx, c, "polizas", searchQuery(term))
}

func (c *Client) ListPolizas(ctx context.Context) ([]*entities.Poliza, error) {
	return fetchList[entities.Poliza](ctx, c, "polizas", "")
}
