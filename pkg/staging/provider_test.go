package staging_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modfuse/pkg/errors"
	"modfuse/pkg/staging"
	"modfuse/pkg/testutil"
)

const root = "/staging"

func seed(t *testing.T, fs *testutil.MemoryFS, path string, content string) {
	t.Helper()
	require.NoError(t, testutil.SeedFile(fs, path, []byte(content)))
}

func TestSourcesDiscoversStagedDirectories(t *testing.T) {
	fs := testutil.NewMemoryFS()
	seed(t, fs, root+"/alpha/textures/rock.dds", "rock")
	seed(t, fs, root+"/alpha/config/settings.yaml", "volume: 5")
	seed(t, fs, root+"/beta/sounds/wind.ogg", "wind")
	seed(t, fs, root+"/.partial/ignored.bin", "x")
	seed(t, fs, root+"/readme.txt", "not a source")

	p := staging.NewProvider(fs, root)
	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "alpha", sources[0].ID)
	assert.Equal(t, 2, sources[0].Files.Len())
	assert.True(t, sources[0].Files.Contains("textures/rock.dds"))
	assert.True(t, sources[0].Files.Contains("config/settings.yaml"))

	assert.Equal(t, "beta", sources[1].ID)
	assert.True(t, sources[1].Files.Contains("sounds/wind.ogg"))
}

func TestSourcesReadsManifest(t *testing.T) {
	fs := testutil.NewMemoryFS()
	seed(t, fs, root+"/storm/weather/rain.cfg", "rain")
	seed(t, fs, root+"/storm/mod.toml",
		"name = \"Storm Overhaul\"\ncategory = \"Weather\"\napplied = \"2026-07-01T10:00:00Z\"\n")

	p := staging.NewProvider(fs, root)
	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)

	src := sources[0]
	assert.Equal(t, "storm", src.ID)
	assert.Equal(t, "Storm Overhaul", src.Name)
	assert.Equal(t, "Weather", src.Category)
	assert.Equal(t, time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), src.AppliedAt)

	// The manifest never counts as payload.
	assert.Equal(t, 1, src.Files.Len())
	assert.False(t, src.Files.Contains("mod.toml"))
}

func TestSourcesRejectsBadManifest(t *testing.T) {
	fs := testutil.NewMemoryFS()
	seed(t, fs, root+"/broken/mod.toml", "name = [unclosed")

	p := staging.NewProvider(fs, root)
	_, err := p.Sources()
	require.Error(t, err)
	assert.Equal(t, errors.ErrConfigParse, errors.GetErrorCode(err))
}

func TestSourcesMissingRoot(t *testing.T) {
	p := staging.NewProvider(testutil.NewMemoryFS(), root)
	_, err := p.Sources()
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFound, errors.GetErrorCode(err))
}

func TestPayloadPath(t *testing.T) {
	fs := testutil.NewMemoryFS()
	seed(t, fs, root+"/alpha/Textures/Rock.DDS", "rock")

	p := staging.NewProvider(fs, root)
	sources, err := p.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)

	// Declared paths match case-insensitively; the staged location
	// keeps the on-disk casing.
	path, err := p.PayloadPath(sources[0], "textures/rock.dds")
	require.NoError(t, err)
	assert.Equal(t, root+"/alpha/Textures/Rock.DDS", path)

	_, err = p.PayloadPath(sources[0], "models/tree.mesh")
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFound, errors.GetErrorCode(err))
}
