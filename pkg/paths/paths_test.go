package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"modfuse/pkg/paths"
)

func TestEnvOverrides(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, "/tmp/modfuse-config")
	t.Setenv(paths.EnvDataDir, "/tmp/modfuse-data")

	p := paths.New()
	assert.Equal(t, "/tmp/modfuse-config", p.ConfigDir())
	assert.Equal(t, "/tmp/modfuse-data", p.DataDir())
	assert.Equal(t, filepath.Join("/tmp/modfuse-data", "backups"), p.BackupsDir())
	assert.Equal(t, filepath.Join("/tmp/modfuse-data", "staging"), p.StagingDir())
}

func TestPriorityConfigPath(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, "/tmp/modfuse-config")
	p := paths.New()

	tests := []struct {
		key  string
		want string
	}{
		{"", "default.toml"},
		{"Steam/AppID 12345", "steam-appid_12345.toml"},
		{"C:\\Games\\Sim", "c--games-sim.toml"},
	}

	for _, tt := range tests {
		got := p.PriorityConfigPath(tt.key)
		assert.Equal(t, filepath.Join("/tmp/modfuse-config", "priorities", tt.want), got)
	}
}
