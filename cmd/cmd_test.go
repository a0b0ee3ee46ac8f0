// Copyright (c) 2025 Inkwell
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inkerrors "inkwell/cli/internal/errors"
	"inkwell/cli/internal/gateway"
	"inkwell/cli/internal/keychain"
)

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "url with password", dsn: "postgres://ed:s3cret@db:5432/inkwell?sslmode=disable", want: "postgres://ed:***@db:5432/inkwell?sslmode=disable"},
		{name: "url without password", dsn: "postgres://ed@db/inkwell", want: "postgres://ed@db/inkwell"},
		{name: "keyword form", dsn: "host=db user=ed password=s3cret dbname=inkwell", want: "host=db user=ed password=*** dbname=inkwell"},
		{name: "keyword form, password last", dsn: "host=db password=s3cret", want: "host=db password=***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := maskPassword(tt.dsn)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "s3cret")
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "CREATE TABLE posts ( ...", firstLine("  CREATE TABLE posts (\n id int\n)"))
	assert.Equal(t, strings.Repeat("x", 80)+"...", firstLine(strings.Repeat("x", 100)))

	// 'ж' occupies bytes 79 and 80
	line := firstLine(strings.Repeat("x", 79) + "жж")
	assert.Equal(t, strings.Repeat("x", 79)+"...", line)
	assert.True(t, utf8.ValidString(line))
}

func TestAPIErrorKinds(t *testing.T) {
	unauthorized := &gateway.StatusError{StatusCode: http.StatusUnauthorized}
	assert.True(t, inkerrors.Is(apiError(unauthorized, "listing posts"), inkerrors.SessionExpired))

	assert.ErrorIs(t, apiError(context.Canceled, "listing posts"), context.Canceled)

	notFound := &gateway.StatusError{StatusCode: http.StatusNotFound}
	err := apiError(notFound, "fetching post")
	assert.ErrorIs(t, err, notFound)
	assert.Contains(t, err.Error(), "fetching post")

	plain := errors.New("post id is required")
	assert.Same(t, plain, apiError(plain, "x"))
	assert.NoError(t, apiError(nil, "x"))
}

// runCLI executes the root command with an isolated config directory.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Cleanup(func() {
		schemaFile, schemaVia = "", "rpc"
		schemaAtomic, schemaStrict, schemaDryRun = false, false, false
		logger = zap.NewNop()
		rootCmd.SetArgs(nil)
	})
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func writeSchema(t *testing.T, sql string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte(sql), 0o600))
	return path
}

func TestSchemaApplyOverRPC(t *testing.T) {
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SQL string `json:"sql"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		sent = append(sent, body.SQL)
		mu.Unlock()
		assert.Equal(t, "svc", r.Header.Get("apikey"))
		if strings.HasPrefix(body.SQL, "CREATE TABLE posts") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"relation \"posts\" already exists"}`))
		}
	}))
	defer srv.Close()

	t.Setenv("INKWELL_SERVICE_URL", srv.URL)
	t.Setenv("INKWELL_SERVICE_KEY", "svc")
	path := writeSchema(t, "CREATE TABLE posts (id int);; CREATE TABLE tags (id int); ")

	require.NoError(t, runCLI(t, "schema", "apply", "--file", path))
	assert.Equal(t, []string{"CREATE TABLE posts (id int)", "CREATE TABLE tags (id int)"}, sent)

	sent = nil
	err := runCLI(t, "schema", "apply", "--file", path, "--strict")
	assert.True(t, inkerrors.Is(err, inkerrors.StatementsFailed))
	assert.Len(t, sent, 2)
}

func TestSchemaApplyDryRunExecutesNothing(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()
	t.Setenv("INKWELL_SERVICE_URL", srv.URL)

	path := writeSchema(t, "SELECT 1; SELECT 2;")
	require.NoError(t, runCLI(t, "schema", "apply", "--file", path, "--dry-run"))
	assert.False(t, called)
}

func TestSchemaApplyAtomicNeedsPostgres(t *testing.T) {
	path := writeSchema(t, "SELECT 1;")
	err := runCLI(t, "schema", "apply", "--file", path, "--atomic")
	assert.True(t, inkerrors.Is(err, inkerrors.InvalidInput))
}

func TestSchemaApplyMissingFile(t *testing.T) {
	err := runCLI(t, "schema", "apply", "--file", filepath.Join(t.TempDir(), "nope.sql"))
	assert.True(t, inkerrors.Is(err, inkerrors.InvalidInput))
}

// useFileKeyring points the CLI at an encrypted file keyring and returns it
// opened, so tests can seed or inspect the stored session.
func useFileKeyring(t *testing.T) *keychain.Manager {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("INKWELL_KEYRING_BACKEND", "file")
	t.Setenv("INKWELL_KEYRING_DIR", dir)
	t.Setenv("INKWELL_KEYRING_PASSWORD", "test-pass")
	km, err := keychain.Open(keychain.Options{Backend: "file", FileDir: dir, FilePassword: "test-pass"})
	require.NoError(t, err)
	return km
}

func TestWhoamiExpiredSessionExitsNonZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
	}))
	defer srv.Close()
	t.Setenv("INKWELL_API_URL", srv.URL)

	km := useFileKeyring(t)
	require.NoError(t, km.SaveSession("stale", []byte(`{"id":"u1","email":"ed@inkwell.dev"}`)))

	err := runCLI(t, "whoami")
	require.Error(t, err)
	assert.True(t, inkerrors.Is(err, inkerrors.SessionExpired))

	_, err = km.LoadAuthToken()
	assert.ErrorIs(t, err, keychain.ErrNotFound)
}

func TestPostsDeleteWithoutTerminalNeedsYes(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()
	t.Setenv("INKWELL_API_URL", srv.URL)

	prev := stdinInteractive
	stdinInteractive = func() bool { return false }
	t.Cleanup(func() { stdinInteractive = prev })

	err := runCLI(t, "posts", "delete", "p1")
	require.Error(t, err)
	assert.True(t, inkerrors.Is(err, inkerrors.InvalidInput))
	assert.Contains(t, err.Error(), "--yes")
	assert.False(t, called)
}
