// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept in the file; secrets come from the
// environment or the OS keychain.
//
// Settings are layered: built-in defaults, then config.json, then environment
// variables. A variable that is unset leaves the lower layer untouched.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"inkwell/cli/internal/xdg"
)

// DefaultAPIBaseURL is used when neither the config file nor INKWELL_API_URL set one.
const DefaultAPIBaseURL = "http://localhost:3001"

// Config holds CLI settings.
type Config struct {
	APIBaseURL string `json:"api_base_url" env:"INKWELL_API_URL"`
	// LoginPath is where an expired session is sent to sign in again.
	LoginPath string `json:"login_path" env:"INKWELL_LOGIN_PATH"`
	LogLevel  string `json:"log_level" env:"INKWELL_LOG_LEVEL"`

	Endpoints Endpoints     `json:"endpoints" envPrefix:"INKWELL_ENDPOINT_"`
	Schema    SchemaConfig  `json:"schema"`
	Keyring   KeyringConfig `json:"keyring"`

	// DatabaseURL is a direct Postgres DSN. Never persisted.
	DatabaseURL string `json:"-" env:"DATABASE_URL"`
}

// Endpoints contains REST API paths relative to APIBaseURL.
type Endpoints struct {
	Login  string `json:"login" env:"LOGIN"`
	Logout string `json:"logout" env:"LOGOUT"`
	Me     string `json:"me" env:"ME"`
	Posts  string `json:"posts" env:"POSTS"`
}

// SchemaConfig configures the schema applier.
type SchemaConfig struct {
	File string `json:"file" env:"INKWELL_SCHEMA_FILE"`
	// ServiceURL is the base URL of the database service exposing the SQL RPC.
	// Empty means APIBaseURL.
	ServiceURL string `json:"service_url" env:"INKWELL_SERVICE_URL"`
	RPCPath    string `json:"rpc_path" env:"INKWELL_SCHEMA_RPC_PATH"`
	// ServiceKey authenticates the RPC executor. Never persisted.
	ServiceKey string `json:"-" env:"INKWELL_SERVICE_KEY"`
}

// KeyringConfig selects the credential store backend.
type KeyringConfig struct {
	// Backend forces one keyring backend ("keychain", "wincred", "secret-service",
	// "kwallet", "pass", "file"). Empty picks the platform default.
	Backend string `json:"backend" env:"INKWELL_KEYRING_BACKEND"`
	FileDir string `json:"file_dir" env:"INKWELL_KEYRING_DIR"`
	// Password unlocks the file backend. Never persisted.
	Password string `json:"-" env:"INKWELL_KEYRING_PASSWORD"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		APIBaseURL: DefaultAPIBaseURL,
		LoginPath:  "/login",
		LogLevel:   "info",
		Endpoints: Endpoints{
			Login:  "/api/auth/login",
			Logout: "/api/auth/logout",
			Me:     "/api/auth/me",
			Posts:  "/api/posts",
		},
		Schema: SchemaConfig{
			File:    filepath.Join("database", "schema.sql"),
			RPCPath: "/rest/v1/rpc/exec_sql",
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile returns defaults overlaid with the config file only. A missing
// file yields defaults.
func LoadFile() (Config, error) {
	c := Defaults()
	p, err := Path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return c, nil
}

// Load reads configuration; a missing file yields defaults. Environment
// variables are applied last.
func Load() (Config, error) {
	c, err := LoadFile()
	if err != nil {
		return c, err
	}
	if err := env.Parse(&c); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// ServiceBaseURL returns the base URL of the SQL RPC service.
func (c Config) ServiceBaseURL() string {
	if s := strings.TrimSpace(c.Schema.ServiceURL); s != "" {
		return strings.TrimRight(s, "/")
	}
	return c.APIBaseURL
}

// Set assigns one persisted setting by its dotted key. Secrets cannot be set
// here; they only come from the environment or the keychain.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	var dst *string
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "api_base_url":
		dst = &c.APIBaseURL
		value = strings.TrimRight(value, "/")
	case "login_path":
		dst = &c.LoginPath
	case "log_level":
		dst = &c.LogLevel
	case "schema.file":
		dst = &c.Schema.File
	case "schema.service_url":
		dst = &c.Schema.ServiceURL
	case "schema.rpc_path":
		dst = &c.Schema.RPCPath
	case "keyring.backend":
		dst = &c.Keyring.Backend
	case "keyring.file_dir":
		dst = &c.Keyring.FileDir
	case "endpoints.login":
		dst = &c.Endpoints.Login
	case "endpoints.logout":
		dst = &c.Endpoints.Logout
	case "endpoints.me":
		dst = &c.Endpoints.Me
	case "endpoints.posts":
		dst = &c.Endpoints.Posts
	default:
		return fmt.Errorf("unknown or secret setting %q", key)
	}
	*dst = value
	return nil
}

// Keys lists the settings accepted by Set.
func Keys() []string {
	return []string{
		"api_base_url", "login_path", "log_level",
		"schema.file", "schema.service_url", "schema.rpc_path",
		"keyring.backend", "keyring.file_dir",
		"endpoints.login", "endpoints.logout", "endpoints.me", "endpoints.posts",
	}
}
