package tenant

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newStoreDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&RoutingConfig{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestStoreEncryptsCredentialAtRest(t *testing.T) {
	db := newStoreDB(t)
	store := NewConfigStore(db)
	ctx := context.Background()

	cfg := &RoutingConfig{
		ID:         "cfg-1",
		TenantID:   "acme",
		Mode:       "remote",
		Credential: "velneo-api-key",
		Active:     true,
	}
	if err := store.Create(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	var raw string
	if err := db.Raw("SELECT credential FROM tenant_routing_configs WHERE tenant_id = ?", "acme").Scan(&raw).Error; err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw == "velneo-api-key" {
		t.Fatal("credential stored in plaintext")
	}
	if !strings.HasPrefix(raw, "enc:v1:") {
		t.Fatalf("unexpected stored form %q", raw)
	}

	got, err := store.GetByTenantID(ctx, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Credential != "velneo-api-key" {
		t.Fatalf("credential = %q, want plaintext roundtrip", got.Credential)
	}
}

func TestStoreUpdateReencryptsCredential(t *testing.T) {
	db := newStoreDB(t)
	store := NewConfigStore(db)
	ctx := context.Background()

	cfg := &RoutingConfig{ID: "cfg-1", TenantID: "acme", Mode: "local", Credential: "old-key", Active: true}
	if err := store.Create(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	cfg.Credential = "new-key"
	if err := store.Update(ctx, cfg); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByTenantID(ctx, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Credential != "new-key" {
		t.Fatalf("credential = %q, want new-key", got.Credential)
	}
}

func TestStoreListActiveDecryptsCredentials(t *testing.T) {
	db := newStoreDB(t)
	store := NewConfigStore(db)
	ctx := context.Background()

	seed := []*RoutingConfig{
		{ID: "cfg-1", TenantID: "acme", Mode: "remote", Credential: "acme-key", Active: true},
		{ID: "cfg-2", TenantID: "globex", Mode: "local", Credential: "globex-key", Active: true},
	}
	for _, cfg := range seed {
		if err := store.Create(ctx, cfg); err != nil {
			t.Fatalf("create %s: %v", cfg.TenantID, err)
		}
	}

	configs, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("len = %d, want 2", len(configs))
	}
	for i, want := range []string{"acme-key", "globex-key"} {
		if configs[i].Credential != want {
			t.Fatalf("credential[%d] = %q, want %q", i, configs[i].Credential, want)
		}
	}
}

func TestStoreUpdateMissingTenant(t *testing.T) {
	db := newStoreDB(t)
	store := NewConfigStore(db)

	err := store.Update(context.Background(), &RoutingConfig{TenantID: "ghost", Mode: "local"})
	if err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
