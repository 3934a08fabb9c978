package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// encPrefix marks an encrypted credential. Values without it are treated as
// plaintext, so rows written before encryption was enabled keep working.
const encPrefix = "enc:v1:"

var (
	secretKeyOnce sync.Once
	secretKey     []byte
)

func getSecretKey() []byte {
	secretKeyOnce.Do(func() {
		seed := strings.TrimSpace(os.Getenv("PARTNER_CREDENTIAL_SECRET"))
		if seed == "" {
			seed = strings.TrimSpace(os.Getenv("JWT_SECRET"))
		}
		if seed == "" {
			seed = "backoffice_dev_credential_secret_change_me"
		}
		sum := sha256.Sum256([]byte(seed))
		secretKey = sum[:]
	})
	return secretKey
}

// EncryptCredential seals a partner credential with AES-GCM and returns a
// printable envelope suitable for a varchar column. Empty input passes
// through unchanged.
func EncryptCredential(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	block, err := aes.NewCipher(getSecretKey())
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("init gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptCredential opens an envelope produced by EncryptCredential. Values
// without the envelope prefix are returned as-is.
func DecryptCredential(stored string) (string, error) {
	if !strings.HasPrefix(stored, encPrefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", fmt.Errorf("decode credential: %w", err)
	}
	block, err := aes.NewCipher(getSecretKey())
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("init gcm: %w", err)
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("credential envelope too short")
	}
	nonce, data := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return "", fmt.Errorf("open credential: %w", err)
	}
	return string(plain), nil
}
