package tenant

import (
	"context"
	"errors"
	"testing"
	"time"

	"backoffice/internal/audit"
)

type fakeConfigStore struct {
	items map[string]*RoutingConfig
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{items: make(map[string]*RoutingConfig)}
}

func (s *fakeConfigStore) GetByTenantID(_ context.Context, tenantID string) (*RoutingConfig, error) {
	if cfg, ok := s.items[tenantID]; ok {
		copied := *cfg
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *fakeConfigStore) Create(_ context.Context, cfg *RoutingConfig) error {
	if _, exists := s.items[cfg.TenantID]; exists {
		return errors.New("duplicate tenant config")
	}
	copied := *cfg
	s.items[cfg.TenantID] = &copied
	return nil
}

func (s *fakeConfigStore) Update(_ context.Context, cfg *RoutingConfig) error {
	if _, ok := s.items[cfg.TenantID]; !ok {
		return ErrNotFound
	}
	copied := *cfg
	s.items[cfg.TenantID] = &copied
	return nil
}

func (s *fakeConfigStore) Deactivate(_ context.Context, tenantID string) error {
	cfg, ok := s.items[tenantID]
	if !ok {
		return ErrNotFound
	}
	cfg.Active = false
	return nil
}

func (s *fakeConfigStore) ListActive(_ context.Context) ([]*RoutingConfig, error) {
	var out []*RoutingConfig
	for _, cfg := range s.items {
		if cfg.Active {
			copied := *cfg
			out = append(out, &copied)
		}
	}
	return out, nil
}

type recordedEvent struct {
	Type  audit.EventType
	Event audit.Event
}

type fakeRecorder struct {
	events []recordedEvent
}

func (r *fakeRecorder) Log(_ context.Context, event audit.Event) {
	r.events = append(r.events, recordedEvent{Type: event.Type, Event: event})
}

func (r *fakeRecorder) LogError(_ context.Context, err error, description string, event audit.Event) {
	event.Success = false
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	event.Description = description
	r.events = append(r.events, recordedEvent{Type: event.Type, Event: event})
}

func (r *fakeRecorder) LogWithActor(_ context.Context, eventType audit.EventType, description string, oldValue, newValue any, actorUserID, tenantID string) {
	r.events = append(r.events, recordedEvent{Type: eventType, Event: audit.Event{
		Type:        eventType,
		TenantID:    tenantID,
		ActorUserID: actorUserID,
		Description: description,
		OldValue:    oldValue,
		NewValue:    newValue,
		Success:     true,
	}})
}

func adminContext(tenantID, userID string) context.Context {
	return WithTenantContext(context.Background(), TenantContext{
		TenantID:      tenantID,
		UserID:        userID,
		IsSystemAdmin: true,
	})
}

func newConfigServiceForTest() (ConfigService, *fakeConfigStore, *InMemoryConfigCache, *fakeRecorder) {
	store := newFakeConfigStore()
	cache := NewInMemoryConfigCache(time.Minute)
	recorder := &fakeRecorder{}
	service := NewConfigService(store, cache, recorder, nil)
	return service, store, cache, recorder
}

func seedConfig(store *fakeConfigStore, tenantID string, mode Mode) {
	store.items[tenantID] = &RoutingConfig{
		ID:             "cfg-" + tenantID,
		TenantID:       tenantID,
		Mode:           mode,
		TimeoutSeconds: 30,
		RetryEnabled:   true,
		Active:         true,
	}
}

func TestResolveUnknownTenant(t *testing.T) {
	service, _, _, _ := newConfigServiceForTest()
	_, err := service.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
}

func TestResolveNormalizesUnrecognizedMode(t *testing.T) {
	service, store, _, _ := newConfigServiceForTest()
	seedConfig(store, "acme", "hybrid-turbo")

	cfg, err := service.Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Fatalf("expected mode normalized to local, got %q", cfg.Mode)
	}
}

func TestResolveIsIdempotentWithoutChange(t *testing.T) {
	service, store, _, _ := newConfigServiceForTest()
	seedConfig(store, "acme", "remote")

	first, err := service.Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	second, err := service.Resolve(context.Background(), "acme")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if first.Mode != second.Mode || first.TenantID != second.TenantID || first.TimeoutSeconds != second.TimeoutSeconds {
		t.Fatalf("expected identical configs, got %#v vs %#v", first, second)
	}
}

func TestResolveIgnoresInactiveConfig(t *testing.T) {
	service, store, _, _ := newConfigServiceForTest()
	seedConfig(store, "acme", "remote")
	store.items["acme"].Active = false

	_, err := service.Resolve(context.Background(), "acme")
	if !errors.Is(err, ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant for inactive config, got %v", err)
	}
}

func TestChangeModeRequiresAdmin(t *testing.T) {
	service, store, _, _ := newConfigServiceForTest()
	seedConfig(store, "acme", "local")

	ctx := WithTenantContext(context.Background(), TenantContext{TenantID: "acme", UserID: "u1"})
	err := service.ChangeMode(ctx, "acme", "remote", "")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	err = service.ChangeMode(context.Background(), "acme", "remote", "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestChangeModeRejectsInvalidMode(t *testing.T) {
	service, store, _, recorder := newConfigServiceForTest()
	seedConfig(store, "acme", "local")

	err := service.ChangeMode(adminContext("sys", "root"), "acme", "turbo", "")
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
	if store.items["acme"].Mode != "local" {
		t.Fatalf("mode should be unchanged, got %q", store.items["acme"].Mode)
	}
	if len(recorder.events) != 1 || recorder.events[0].Event.Success {
		t.Fatalf("expected one failure audit event, got %#v", recorder.events)
	}
}

func TestChangeModePersistsAndAudits(t *testing.T) {
	service, store, cache, recorder := newConfigServiceForTest()
	seedConfig(store, "acme", "local")

	// Warm the cache, then verify the change invalidates it.
	if _, err := service.Resolve(context.Background(), "acme"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	err := service.ChangeMode(adminContext("sys", "root"), "acme", "remote", "partner migration")
	if err != nil {
		t.Fatalf("ChangeMode failed: %v", err)
	}
	if store.items["acme"].Mode != "remote" {
		t.Fatalf("mode not persisted, got %q", store.items["acme"].Mode)
	}
	if _, ok := cache.Get(context.Background(), "acme"); ok {
		t.Fatalf("cache entry should be invalidated after mode change")
	}

	if len(recorder.events) != 1 {
		t.Fatalf("expected exactly one audit event, got %d", len(recorder.events))
	}
	event := recorder.events[0].Event
	if event.Type != audit.EventTenantModeChanged {
		t.Fatalf("unexpected event type %q", event.Type)
	}
	if event.ActorUserID != "root" || event.TenantID != "acme" {
		t.Fatalf("event attribution wrong: %#v", event)
	}
	old, _ := event.OldValue.(map[string]string)
	updated, _ := event.NewValue.(map[string]string)
	if old["mode"] != "local" || updated["mode"] != "remote" {
		t.Fatalf("old/new mode snapshot wrong: %#v / %#v", event.OldValue, event.NewValue)
	}
	if event.Description != "partner migration" {
		t.Fatalf("reason not recorded: %q", event.Description)
	}
}

func TestCreateConfigValidatesMode(t *testing.T) {
	service, _, _, _ := newConfigServiceForTest()
	_, err := service.CreateConfig(adminContext("sys", "root"), CreateConfigParams{
		TenantID: "acme",
		Mode:     "sideways",
	})
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestDeactivateConfigKeepsRow(t *testing.T) {
	service, store, _, recorder := newConfigServiceForTest()
	seedConfig(store, "acme", "remote")

	if err := service.DeactivateConfig(adminContext("sys", "root"), "acme"); err != nil {
		t.Fatalf("DeactivateConfig failed: %v", err)
	}
	cfg, ok := store.items["acme"]
	if !ok {
		t.Fatalf("row should survive logical delete")
	}
	if cfg.Active {
		t.Fatalf("config should be inactive")
	}
	if len(recorder.events) != 1 || recorder.events[0].Type != audit.EventTenantConfigDeactivated {
		t.Fatalf("expected deactivation audit event, got %#v", recorder.events)
	}
}

func TestParseModeStrict(t *testing.T) {
	cases := map[string]bool{
		"local":  true,
		"REMOTE": true,
		" Local": true,
		"hybrid": false,
		"":       false,
	}
	for input, ok := range cases {
		_, err := ParseMode(input)
		if ok && err != nil {
			t.Fatalf("ParseMode(%q) unexpected error: %v", input, err)
		}
		if !ok && !errors.Is(err, ErrInvalidMode) {
			t.Fatalf("ParseMode(%q) expected ErrInvalidMode, got %v", input, err)
		}
	}
}

func TestCurrentTenantAndUser(t *testing.T) {
	if _, err := CurrentTenantID(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated without context")
	}

	ctx := WithTenantContext(context.Background(), TenantContext{UserID: "u1"})
	if _, err := CurrentTenantID(ctx); !errors.Is(err, ErrMissingTenantClaim) {
		t.Fatalf("expected ErrMissingTenantClaim for identity without tenant")
	}

	ctx = WithTenantContext(context.Background(), TenantContext{TenantID: "acme", UserID: "u1"})
	tenantID, err := CurrentTenantID(ctx)
	if err != nil || tenantID != "acme" {
		t.Fatalf("CurrentTenantID = %q, %v", tenantID, err)
	}
	userID, err := CurrentUserID(ctx)
	if err != nil || userID != "u1" {
		t.Fatalf("CurrentUserID = %q, %v", userID, err)
	}
}
