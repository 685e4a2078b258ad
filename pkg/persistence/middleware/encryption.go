package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/aretw0/uiengineer/pkg/ports"
	"github.com/aretw0/uiengineer/pkg/schema"
)

// EnvelopeClass marks the single Text node that carries an encrypted tree.
const EnvelopeClass = "uiengineer:encrypted:v1"

// ErrNotEncrypted is returned by Load when the stored tree is not an envelope.
var ErrNotEncrypted = errors.New("stored tree is missing the encrypted envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.StateStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts trees using AES-GCM.
// The backend only ever sees a one-node envelope tree, so any StateStore can
// hold encrypted apps.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.StateStore) ports.StateStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, appID string, tree domain.Tree) error {
	plainText, err := domain.MarshalTree(tree)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	// The app ID is bound as additional data so envelopes cannot be swapped
	// between apps.
	ciphertext, err := encrypt(plainText, m.config.ActiveKey, []byte(appID))
	if err != nil {
		return fmt.Errorf("failed to encrypt tree: %w", err)
	}

	envelope := domain.Tree{domain.Text{
		StyleClass: EnvelopeClass,
		Content:    base64.StdEncoding.EncodeToString(ciphertext),
	}}
	return m.next.Save(ctx, appID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, appID string) (domain.Tree, error) {
	envelope, err := m.next.Load(ctx, appID)
	if err != nil {
		return nil, err
	}

	// Fail secure: a plain tree under an encrypting store is an error.
	sealed, ok := unwrapEnvelope(envelope)
	if !ok {
		return nil, fmt.Errorf("%s: %w", appID, ErrNotEncrypted)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, []byte(appID), m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", appID, err)
	}

	return schema.ParseJSON(plainText)
}

func (m *encryptionMiddleware) Delete(ctx context.Context, appID string) error {
	return m.next.Delete(ctx, appID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func unwrapEnvelope(tree domain.Tree) (string, bool) {
	if len(tree) != 1 {
		return "", false
	}
	text, ok := tree[0].(domain.Text)
	if !ok || text.StyleClass != EnvelopeClass {
		return "", false
	}
	return text.Content, true
}

// Helpers

func encrypt(plaintext, key, additional []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, additional), nil
}

func decryptWithRotation(ciphertext, additional, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey, additional); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key, additional); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key, additional []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], additional)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
