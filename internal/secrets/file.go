package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize    = 16
	lockTimeout = 10 * time.Second
)

// argon2id parameters for deriving the file key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// errBadPassphrase is returned when the store cannot be decrypted.
var errBadPassphrase = errors.New("credentials file cannot be decrypted with this passphrase")

// DefaultFilePath is where the encrypted store lives unless configured.
func DefaultFilePath() string {
	return filepath.Join(xdg.DataHome, "keystash", "credentials.enc")
}

// FileMechanism stores secrets in an AES-256-GCM encrypted file. It is meant
// for machines without a desktop keyring and is only used when enabled
// explicitly.
//
// File layout: salt (16 bytes) | nonce | ciphertext. The plaintext is a JSON
// object of service -> key -> value.
type FileMechanism struct {
	path       string
	passphrase []byte
	lock       *flock.Flock
}

// NewFileMechanism opens the store at path. An empty passphrase is refused.
func NewFileMechanism(path, passphrase string) (*FileMechanism, error) {
	if passphrase == "" {
		return nil, mechErr(BackendFile, "open", FailureInit, errors.New("no passphrase configured (set KEYSTASH_FILE_PASSWORD)"))
	}
	if path == "" {
		path = DefaultFilePath()
	}

	// Create parent directory with 0700 permissions
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, mechErr(BackendFile, "open", FailureInit, fmt.Errorf("failed to create credentials directory: %w", err))
	}

	return &FileMechanism{
		path:       path,
		passphrase: []byte(passphrase),
		lock:       flock.New(path + ".lock"),
	}, nil
}

func (s *FileMechanism) Name() string { return BackendFile }

func (s *FileMechanism) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// encrypt seals plaintext under a fresh salt and nonce.
func (s *FileMechanism) encrypt(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := append(salt, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func (s *FileMechanism) decrypt(data []byte) ([]byte, error) {
	if len(data) < saltSize {
		return nil, fmt.Errorf("credentials file too short")
	}
	salt, data := data[:saltSize], data[saltSize:]

	gcm, err := newGCM(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, fmt.Errorf("credentials file too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errBadPassphrase
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

type fileContents map[string]map[string]string

// readStore decrypts the store. A missing or empty file is an empty store.
func (s *FileMechanism) readStore() (fileContents, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileContents{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(data) == 0 {
		return fileContents{}, nil
	}

	plaintext, err := s.decrypt(data)
	if err != nil {
		return nil, err
	}

	var store fileContents
	if err := json.Unmarshal(plaintext, &store); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if store == nil {
		store = fileContents{}
	}
	return store, nil
}

// writeStore replaces the file atomically via rename.
func (s *FileMechanism) writeStore(store fileContents) error {
	plaintext, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	ciphertext, err := s.encrypt(plaintext)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return nil
}

func (s *FileMechanism) withLock(shared bool, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	var locked bool
	var err error
	if shared {
		locked, err = s.lock.TryRLockContext(ctx, 100*time.Millisecond)
	} else {
		locked, err = s.lock.TryLockContext(ctx, 100*time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout")
	}
	defer s.lock.Unlock()

	return fn()
}

func (s *FileMechanism) fail(op string, err error) error {
	var me *MechanismError
	if errors.As(err, &me) {
		return err
	}
	if errors.Is(err, errBadPassphrase) {
		return mechErr(BackendFile, op, FailureLocked, err)
	}
	return mechErr(BackendFile, op, FailureTransport, err)
}

func (s *FileMechanism) Get(service, key string) (string, error) {
	var value string
	err := s.withLock(true, func() error {
		store, err := s.readStore()
		if err != nil {
			return err
		}
		v, ok := store[service][key]
		if !ok {
			return mechErr(BackendFile, "get", FailureAbsent, nil)
		}
		value = v
		return nil
	})
	if err != nil {
		return "", s.fail("get", err)
	}
	return value, nil
}

func (s *FileMechanism) Set(service, key, value string) error {
	err := s.withLock(false, func() error {
		store, err := s.readStore()
		if err != nil {
			return err
		}
		if store[service] == nil {
			store[service] = map[string]string{}
		}
		store[service][key] = value
		return s.writeStore(store)
	})
	if err != nil {
		return s.fail("set", err)
	}
	return nil
}

func (s *FileMechanism) Delete(service, key string) error {
	err := s.withLock(false, func() error {
		store, err := s.readStore()
		if err != nil {
			return err
		}
		if _, ok := store[service][key]; !ok {
			return mechErr(BackendFile, "delete", FailureAbsent, nil)
		}
		delete(store[service], key)
		if len(store[service]) == 0 {
			delete(store, service)
		}
		return s.writeStore(store)
	})
	if err != nil {
		return s.fail("delete", err)
	}
	return nil
}
