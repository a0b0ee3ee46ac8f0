// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *keyring.ArrayKeyring) {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	return NewManager(ring), ring
}

func TestSessionRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.LoadAuthToken()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveSession("tok", []byte(`{"email":"ed@inkwell.dev"}`)))

	tok, err := m.LoadAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	user, err := m.LoadAdminUser()
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"ed@inkwell.dev"}`, string(user))
}

func TestClearSessionKeepsDSN(t *testing.T) {
	m, ring := newTestManager(t)
	require.NoError(t, m.SaveSession("tok", []byte(`{}`)))
	require.NoError(t, m.SaveDBDSN("postgres://u:p@h/db"))

	require.NoError(t, m.ClearSession())
	require.NoError(t, m.ClearSession(), "clearing twice is fine")

	_, err := ring.Get(KeyAdminUser)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
	_, err = m.LoadAuthToken()
	assert.ErrorIs(t, err, ErrNotFound)

	dsn, err := m.LoadDBDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", dsn)

	require.NoError(t, m.ClearAll())
	_, err = m.LoadDBDSN()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllowedBackends(t *testing.T) {
	tests := []struct {
		name    string
		want    keyring.BackendType
		wantErr bool
	}{
		{name: "file", want: keyring.FileBackend},
		{name: "Keychain", want: keyring.KeychainBackend},
		{name: "secret-service", want: keyring.SecretServiceBackend},
		{name: "pass", want: keyring.PassBackend},
		{name: "floppy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := allowedBackends(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []keyring.BackendType{tt.want}, got)
		})
	}

	def, err := allowedBackends("")
	require.NoError(t, err)
	assert.NotEmpty(t, def)
}

func TestOpenFileBackend(t *testing.T) {
	m, err := Open(Options{Backend: "file", FileDir: t.TempDir(), FilePassword: "pw"})
	require.NoError(t, err)

	require.NoError(t, m.SaveDBDSN("postgres://localhost/blog"))
	got, err := m.LoadDBDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/blog", got)
}
