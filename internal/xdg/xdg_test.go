package xdg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsHonourEnvironment(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		get    func() (string, error)
	}{
		{name: "config", envKey: "XDG_CONFIG_HOME", get: ConfigDir},
		{name: "state", envKey: "XDG_STATE_HOME", get: StateDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			t.Setenv(tt.envKey, base)

			dir, err := tt.get()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(base, "inkwell"), dir)

			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
			assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
		})
	}
}
