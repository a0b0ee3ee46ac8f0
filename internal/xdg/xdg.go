// Package xdg resolves XDG Base Directory paths for inkwell.
// Config holds non-secret settings; state holds the file-backed credential
// store on systems without a native keychain.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "inkwell"

// ConfigDir returns the XDG config directory for inkwell.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/inkwell when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for inkwell.
// It falls back to ~/.local/state/inkwell when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func ensure(envKey, homeRel string) (string, error) {
	base := os.Getenv(envKey)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
