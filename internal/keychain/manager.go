// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS credential store.
// It holds the admin session (bearer credential and identity) and the
// Postgres DSN saved by `inkwell connect`. Nothing here is written to the
// plain config file.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "inkwell"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAuthToken = "authToken"
	KeyAdminUser = "adminUser"
	KeyDBDSN     = "db_dsn"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("keychain: item not found")

// Options selects and configures the keyring backend.
type Options struct {
	// Backend forces a single backend by name; empty means platform default.
	Backend string
	// FileDir is the directory for the encrypted file backend.
	FileDir string
	// FilePassword unlocks the file backend without prompting.
	FilePassword string
}

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the credential store described by opts.
func Open(opts Options) (*Manager, error) {
	backends, err := allowedBackends(opts.Backend)
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          backends,
		KeychainName:             "login",
		KeychainTrustApplication: true,
		LibSecretCollectionName:  ServiceName,
		KWalletAppID:             ServiceName,
		KWalletFolder:            ServiceName,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		FileDir:                  opts.FileDir,
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	} else {
		cfg.FilePasswordFunc = func(string) (string, error) {
			return "", errors.New("file keyring is locked; set INKWELL_KEYRING_PASSWORD")
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	return &Manager{ring: ring}, nil
}

// NewManager wraps an already opened keyring.
func NewManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// allowedBackends maps a backend name to keyring types. The file backend is
// only used when asked for explicitly or on platforms without a native store.
func allowedBackends(name string) ([]keyring.BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "secret-service", "secretservice":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "kwallet":
		return []keyring.BackendType{keyring.KWalletBackend}, nil
	case "pass":
		return []keyring.BackendType{keyring.PassBackend}, nil
	case "keyctl":
		return []keyring.BackendType{keyring.KeyCtlBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("unknown keyring backend %q", name)
	}

	switch runtime.GOOS {
	case "darwin":
		// pass is the fallback when the login keychain is unavailable
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}, nil
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}, nil
	}
}

func (m *Manager) get(key string) (string, error) {
	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

func (m *Manager) set(key string, data []byte) error {
	return m.ring.Set(keyring.Item{Key: key, Data: data, Label: ServiceName + " " + key})
}

func (m *Manager) remove(keys ...string) error {
	var errs []error
	for _, k := range keys {
		if err := m.ring.Remove(k); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// SaveSession stores the bearer credential and the serialized identity.
// This method is thread-safe.
func (m *Manager) SaveSession(token string, identity []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.set(KeyAuthToken, []byte(token)); err != nil {
		return err
	}
	return m.set(KeyAdminUser, identity)
}

// LoadAuthToken retrieves the bearer credential.
// This method is thread-safe.
func (m *Manager) LoadAuthToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(KeyAuthToken)
}

// LoadAdminUser retrieves the serialized session identity.
// This method is thread-safe.
func (m *Manager) LoadAdminUser() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, err := m.get(KeyAdminUser)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// ClearSession removes the credential and the session identity.
// Missing keys are not an error. This method is thread-safe.
func (m *Manager) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(KeyAdminUser, KeyAuthToken)
}

// SaveDBDSN stores the database DSN in the keychain.
// This method is thread-safe.
func (m *Manager) SaveDBDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set(KeyDBDSN, []byte(dsn))
}

// LoadDBDSN retrieves the database DSN from the keychain.
// This method is thread-safe.
func (m *Manager) LoadDBDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(KeyDBDSN)
}

// ClearDB removes DB-related secrets from the keychain.
// This method is thread-safe.
func (m *Manager) ClearDB() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(KeyDBDSN)
}

// ClearAll removes all secrets from the keychain.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(KeyAdminUser, KeyAuthToken, KeyDBDSN)
}
