package local

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"backoffice/internal/entities"
	"backoffice/internal/tenant"
)

// Store is the local persistence side of the dispatcher. Every query is
// scoped to the calling tenant; a record belonging to another tenant behaves
// exactly like a missing record.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

func getByID[T any](ctx context.Context, s *Store, id int64) (*T, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out T
	err = s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %d: %w", id, tenant.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func listAll[T any](ctx context.Context, s *Store) ([]*T, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []*T
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func searchWhere[T any](ctx context.Context, s *Store, query string, args ...any) ([]*T, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	var out []*T
	err = s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where(query, args...).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func deleteByID[T any](ctx context.Context, s *Store, id int64) error {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(new(T), id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %d: %w", id, tenant.ErrNotFound)
	}
	return nil
}

func updateRecord[T any](ctx context.Context, s *Store, id int64, record *T) (*T, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(record)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("record %d: %w", id, tenant.ErrNotFound)
	}
	return getByID[T](ctx, s, id)
}

// contains builds a case-insensitive LIKE argument.
func contains(term string) string {
	return "%" + term + "%"
}

// ----- Client -----

func (s *Store) GetClient(ctx context.Context, id int64) (*entities.Client, error) {
	return getByID[entities.Client](ctx, s, id)
}

func (s *Store) CreateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	client.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Store) UpdateClient(ctx context.Context, client *entities.Client) (*entities.Client, error) {
	return updateRecord(ctx, s, client.ID, client)
}

func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	return deleteByID[entities.Client](ctx, s, id)
}

func (s *Store) SearchClients(ctx context.Context, term string) ([]*entities.Client, error) {
	like := contains(term)
	return searchWhere[entities.Client](ctx, s, "name LIKE ? OR tax_id LIKE ? OR email LIKE ?", like, like, like)
}

func (s *Store) ListClients(ctx context.Context) ([]*entities.Client, error) {
	return listAll[entities.Client](ctx, s)
}

// ----- Broker -----

func (s *Store) GetBroker(ctx context.Context, id int64) (*entities.Broker, error) {
	return getByID[entities.Broker](ctx, s, id)
}

func (s *Store) CreateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	broker.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(broker).Error; err != nil {
		return nil, err
	}
	return broker, nil
}

func (s *Store) UpdateBroker(ctx context.Context, broker *entities.Broker) (*entities.Broker, error) {
	return updateRecord(ctx, s, broker.ID, broker)
}

func (s *Store) DeleteBroker(ctx context.Context, id int64) error {
	return deleteByID[entities.Broker](ctx, s, id)
}

func (s *Store) SearchBrokers(ctx context.Context, term string) ([]*entities.Broker, error) {
	like := contains(term)
	return searchWhere[entities.Broker](ctx, s, "name LIKE ? OR code LIKE ?", like, like)
}

func (s *Store) ListBrokers(ctx context.Context) ([]*entities.Broker, error) {
	return listAll[entities.Broker](ctx, s)
}

// ----- Company -----

func (s *Store) GetCompany(ctx context.Context, id int64) (*entities.Company, error) {
	return getByID[entities.Company](ctx, s, id)
}

func (s *Store) CreateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	company.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Store) UpdateCompany(ctx context.Context, company *entities.Company) (*entities.Company, error) {
	return updateRecord(ctx, s, company.ID, company)
}

func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	return deleteByID[entities.Company](ctx, s, id)
}

func (s *Store) SearchCompanies(ctx context.Context, term string) ([]*entities.Company, error) {
	like := contains(term)
	return searchWhere[entities.Company](ctx, s, "name LIKE ? OR code LIKE ?", like, like)
}

func (s *Store) ListCompanies(ctx context.Context) ([]*entities.Company, error) {
	return listAll[entities.Company](ctx, s)
}

// ----- Currency -----

func (s *Store) GetCurrency(ctx context.Context, id int64) (*entities.Currency, error) {
	return getByID[entities.Currency](ctx, s, id)
}

func (s *Store) CreateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	currency.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(currency).Error; err != nil {
		return nil, err
	}
	return currency, nil
}

func (s *Store) UpdateCurrency(ctx context.Context, currency *entities.Currency) (*entities.Currency, error) {
	return updateRecord(ctx, s, currency.ID, currency)
}

func (s *Store) DeleteCurrency(ctx context.Context, id int64) error {
	return deleteByID[entities.Currency](ctx, s, id)
}

func (s *Store) SearchCurrencies(ctx context.Context, term string) ([]*entities.Currency, error) {
	like := contains(term)
	return searchWhere[entities.Currency](ctx, s, "code LIKE ? OR name LIKE ?", like, like)
}

func (s *Store) ListCurrencies(ctx context.Context) ([]*entities.Currency, error) {
	return listAll[entities.Currency](ctx, s)
}

// ----- Poliza -----

func (s *Store) GetPoliza(ctx context.Context, id int64) (*entities.Poliza, error) {
	return getByID[entities.Poliza](ctx, s, id)
}

func (s *Store) CreatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return nil, err
	}
	poliza.TenantID = tenantID
	if err := s.db.WithContext(ctx).Create(poliza).Error; err != nil {
		return nil, err
	}
	return poliza, nil
}

func (s *Store) UpdatePoliza(ctx context.Context, poliza *entities.Poliza) (*entities.Poliza, error) {
	return updateRecord(ctx, s, poliza.ID, poliza)
}

func (s *Store) DeletePoliza(ctx context.Context, id int64) error {
	return deleteByID[entities.Poliza](ctx, s, id)
}

func (s *Store) SearchPolizas(ctx context.Context, term string) ([]*entities.Poliza, error) {
	like := contains(term)
	return searchWhere[entities.Poliza](ctx, s, "policy_number LIKE ? OR status LIKE ?", like, like)
}

func (s *Store) ListPolizas(ctx context.Context) ([]*entities.Poliza, error) {
	return listAll[entities.Poliza](ctx, s)
}

// ----- Replication hooks -----

// Mirror upserts a record written on the remote side, keeping the
// remote-assigned primary key so both sides agree on identity.
func (s *Store) Mirror(ctx context.Context, record any) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
}

// MirrorDelete removes the local copy of a record deleted remotely. A copy
// that was never mirrored is not an error.
func (s *Store) MirrorDelete(ctx context.Context, model any, id int64) error {
	tenantID, err := tenant.CurrentTenantID(ctx)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(model, id).Error
}
