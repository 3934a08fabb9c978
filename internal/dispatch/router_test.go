package dispatch

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/tenant"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *tenant.RoutingConfig
		op          Operation
		want        Backend
		safeDefault bool
	}{
		{
			name: "local mode routes locally",
			cfg:  &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.ModeLocal},
			op:   Operation{Entity: EntityClient, Verb: VerbGet},
			want: BackendLocal,
		},
		{
			name: "remote mode routes remotely",
			cfg:  &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.ModeRemote},
			op:   Operation{Entity: EntityPoliza, Verb: VerbSearch},
			want: BackendRemote,
		},
		{
			name:        "unrecognized mode defaults to local",
			cfg:         &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.Mode("hybrid")},
			op:          Operation{Entity: EntityBroker, Verb: VerbCreate},
			want:        BackendLocal,
			safeDefault: true,
		},
		{
			name:        "missing config defaults to local",
			cfg:         nil,
			op:          Operation{Entity: EntityCurrency, Verb: VerbGetAll},
			want:        BackendLocal,
			safeDefault: true,
		},
		{
			name: "document extraction stays local in remote mode",
			cfg:  &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.ModeRemote},
			op:   Operation{Entity: EntityDocument, Verb: VerbExtract},
			want: BackendLocal,
		},
		{
			name: "document entity stays local whatever the verb",
			cfg:  &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.ModeRemote},
			op:   Operation{Entity: EntityDocument, Verb: VerbGet},
			want: BackendLocal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.cfg, tt.op)
			if got.Backend != tt.want {
				t.Fatalf("Decide backend = %s, want %s", got.Backend, tt.want)
			}
			if got.SafeDefault != tt.safeDefault {
				t.Fatalf("Decide safeDefault = %v, want %v", got.SafeDefault, tt.safeDefault)
			}
		})
	}
}

func TestStaticPolicyModeFlowsIntoDecision(t *testing.T) {
	cases := []struct {
		mode tenant.Mode
		want Backend
	}{
		{tenant.ModeLocal, BackendLocal},
		{tenant.ModeRemote, BackendRemote},
	}
	for _, tc := range cases {
		cfg, err := NewStaticPolicy(tc.mode, 15*time.Second).ConfigFor(context.Background(), "acme")
		if err != nil {
			t.Fatalf("ConfigFor(%s) failed: %v", tc.mode, err)
		}
		if cfg.Mode != tc.mode {
			t.Fatalf("config mode = %q, want %q", cfg.Mode, tc.mode)
		}
		got := Decide(cfg, Operation{Entity: EntityClient, Verb: VerbGet})
		if got.Backend != tc.want || got.SafeDefault {
			t.Fatalf("Decide(%s) = %+v, want backend %s", tc.mode, got, tc.want)
		}
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	cfg := &tenant.RoutingConfig{TenantID: "acme", Mode: tenant.ModeRemote}
	op := Operation{Entity: EntityClient, Verb: VerbGet, Identifier: "42"}
	first := Decide(cfg, op)
	for i := 0; i < 100; i++ {
		if got := Decide(cfg, op); got != first {
			t.Fatalf("Decide changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestOperationLabel(t *testing.T) {
	op := Operation{Entity: EntityClient, Verb: VerbGet}
	if got := op.Label(); got != "client.get" {
		t.Fatalf("Label = %q, want %q", got, "client.get")
	}
	if op.IsDocumentIntelligence() {
		t.Fatalf("client.get flagged as document intelligence")
	}
	if !(Operation{Entity: EntityPoliza, Verb: VerbDelete}).IsMutation() {
		t.Fatalf("poliza.delete not flagged as mutation")
	}
	if (Operation{Entity: EntityPoliza, Verb: VerbSearch}).IsMutation() {
		t.Fatalf("poliza.search flagged as mutation")
	}
}
