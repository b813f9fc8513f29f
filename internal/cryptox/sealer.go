package cryptox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// ErrSealedSecretInvalid is returned when a sealed value cannot be opened with
// the device identity (wrong key file or corrupted data).
var ErrSealedSecretInvalid = errors.New("sealed secret cannot be opened")

// Sealer encrypts small secrets to this device's age X25519 identity.
type Sealer struct {
	identity *age.X25519Identity
}

// NewSealer wraps an existing identity.
func NewSealer(identity *age.X25519Identity) *Sealer {
	return &Sealer{identity: identity}
}

// LoadOrCreateSealer reads the device identity from path, generating and
// writing a new one (mode 0600) when the file does not exist yet.
func LoadOrCreateSealer(path string) (*Sealer, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		identity, err := age.ParseX25519Identity(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing device key %s: %w", path, err)
		}
		return NewSealer(identity), nil
	case errors.Is(err, fs.ErrNotExist):
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("generating device key: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating key dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(identity.String()+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("writing device key %s: %w", path, err)
		}
		return NewSealer(identity), nil
	default:
		return nil, fmt.Errorf("reading device key %s: %w", path, err)
	}
}

// Recipient returns the public half of the device identity (age1...).
func (s *Sealer) Recipient() string {
	return s.identity.Recipient().String()
}

// Seal encrypts plaintext to the device identity.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(sealed), s.identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedSecretInvalid, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedSecretInvalid, err)
	}
	return plaintext, nil
}
