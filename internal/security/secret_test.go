package security

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	sealed, err := EncryptCredential("velneo-api-key-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !strings.HasPrefix(sealed, encPrefix) {
		t.Fatalf("missing envelope prefix: %q", sealed)
	}
	if strings.Contains(sealed, "velneo-api-key-123") {
		t.Fatal("plaintext leaked into envelope")
	}

	plain, err := DecryptCredential(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "velneo-api-key-123" {
		t.Fatalf("roundtrip = %q", plain)
	}
}

func TestEncryptEmptyPassesThrough(t *testing.T) {
	sealed, err := EncryptCredential("")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if sealed != "" {
		t.Fatalf("empty credential became %q", sealed)
	}
}

func TestDecryptPlaintextPassesThrough(t *testing.T) {
	plain, err := DecryptCredential("legacy-plaintext-key")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "legacy-plaintext-key" {
		t.Fatalf("passthrough = %q", plain)
	}
}

func TestDecryptRejectsCorruptEnvelope(t *testing.T) {
	if _, err := DecryptCredential(encPrefix + "not-base64!!"); err == nil {
		t.Fatal("expected error for corrupt envelope")
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	a, err := EncryptCredential("same-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := EncryptCredential("same-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Fatal("identical envelopes for identical plaintexts")
	}
}
