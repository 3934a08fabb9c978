package entities

import (
	"time"

	"gorm.io/gorm"
)

// Client is an insured person or organization.
type Client struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  string         `gorm:"type:varchar(64);not null;index:idx_clients_tenant" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxID     string         `gorm:"type:varchar(32);index" json:"tax_id"`
	Email     string         `gorm:"type:varchar(255)" json:"email"`
	Phone     string         `gorm:"type:varchar(32)" json:"phone"`
	Address   string         `gorm:"type:text" json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string { return "clients" }

// Broker is an intermediary that places policies with companies.
type Broker struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   string         `gorm:"type:varchar(64);not null;index:idx_brokers_tenant" json:"tenant_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Code       string         `gorm:"type:varchar(32);index" json:"code"`
	Email      string         `gorm:"type:varchar(255)" json:"email"`
	Phone      string         `gorm:"type:varchar(32)" json:"phone"`
	Commission float64        `json:"commission"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Broker) TableName() string { return "brokers" }

// Company is an insurance carrier underwriting policies.
type Company struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  string         `gorm:"type:varchar(64);not null;index:idx_companies_tenant" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Code      string         `gorm:"type:varchar(32);index" json:"code"`
	TaxID     string         `gorm:"type:varchar(32)" json:"tax_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string { return "companies" }

// Currency is a billing currency.
type Currency struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID     string         `gorm:"type:varchar(64);not null;index:idx_currencies_tenant" json:"tenant_id"`
	Code         string         `gorm:"type:varchar(8);not null;index" json:"code"` // ISO 4217
	Name         string         `gorm:"type:varchar(64);not null" json:"name"`
	Symbol       string         `gorm:"type:varchar(8)" json:"symbol"`
	ExchangeRate float64        `json:"exchange_rate"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Currency) TableName() string { return "currencies" }

// Poliza is an insurance policy.
type Poliza struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID     string         `gorm:"type:varchar(64);not null;index:idx_polizas_tenant" json:"tenant_id"`
	PolicyNumber string         `gorm:"type:varchar(64);not null;index" json:"policy_number"`
	ClientID     int64          `gorm:"index" json:"client_id"`
	BrokerID     int64          `gorm:"index" json:"broker_id"`
	CompanyID    int64          `gorm:"index" json:"company_id"`
	CurrencyID   int64          `json:"currency_id"`
	Premium      float64        `json:"premium"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
	Status       string         `gorm:"type:varchar(32);not null;default:active" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Poliza) TableName() string { return "polizas" }
