package modfuse

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modfuse/pkg/paths"
)

// execute runs the root command with args and returns its combined
// output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// stageMod writes one staged mod directory with the given files.
func stageMod(t *testing.T, stagingDir, id string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(stagingDir, id, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	t.Setenv(paths.EnvDataDir, t.TempDir())
	staging := t.TempDir()
	return staging
}

func TestDetectCmdNoSources(t *testing.T) {
	staging := setupEnv(t)

	out, err := execute(t, "detect", "--staging", staging)
	require.NoError(t, err)
	assert.Contains(t, out, "No staged mods found.")
}

func TestDetectCmdReportsConflicts(t *testing.T) {
	staging := setupEnv(t)
	stageMod(t, staging, "alpha", map[string]string{"textures/rock.dds": "a"})
	stageMod(t, staging, "beta", map[string]string{"textures/rock.dds": "b"})

	out, err := execute(t, "detect", "--staging", staging)
	require.NoError(t, err)
	assert.Contains(t, out, "alpha+beta")
	assert.Contains(t, out, "textures/rock.dds")
}

func TestDetectCmdNoConflicts(t *testing.T) {
	staging := setupEnv(t)
	stageMod(t, staging, "alpha", map[string]string{"textures/rock.dds": "a"})
	stageMod(t, staging, "beta", map[string]string{"sounds/wind.ogg": "b"})

	out, err := execute(t, "detect", "--staging", staging)
	require.NoError(t, err)
	assert.Contains(t, out, "No conflicts detected.")
}

func TestMergeCmdAppliesFiles(t *testing.T) {
	staging := setupEnv(t)
	target := t.TempDir()
	stageMod(t, staging, "alpha", map[string]string{"textures/rock.dds": "alpha-rock"})
	stageMod(t, staging, "beta", map[string]string{"sounds/wind.ogg": "beta-wind"})

	out, err := execute(t, "merge", "--staging", staging, target)
	require.NoError(t, err)
	assert.Contains(t, out, "Merge applied")

	rock, err := os.ReadFile(filepath.Join(target, "textures", "rock.dds"))
	require.NoError(t, err)
	assert.Equal(t, "alpha-rock", string(rock))
	wind, err := os.ReadFile(filepath.Join(target, "sounds", "wind.ogg"))
	require.NoError(t, err)
	assert.Equal(t, "beta-wind", string(wind))
}

func TestMergeCmdDryRun(t *testing.T) {
	staging := setupEnv(t)
	target := t.TempDir()
	stageMod(t, staging, "alpha", map[string]string{"textures/rock.dds": "alpha-rock"})

	out, err := execute(t, "merge", "--dry-run", "--staging", staging, target)
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE")
	assert.NoFileExists(t, filepath.Join(target, "textures", "rock.dds"))
}

func TestMergeCmdNeedsDecisionAndWinner(t *testing.T) {
	staging := setupEnv(t)
	target := t.TempDir()
	stageMod(t, staging, "alpha", map[string]string{"core/engine.cfg": "alpha-core"})
	stageMod(t, staging, "beta", map[string]string{"core/engine.cfg": "beta-core"})

	out, err := execute(t, "merge", "--staging", staging, target)
	require.NoError(t, err)
	assert.Contains(t, out, "need a decision")
	assert.NoFileExists(t, filepath.Join(target, "core", "engine.cfg"))

	out, err = execute(t, "merge", "--staging", staging, "--winner", "alpha+beta=beta", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Merge applied")

	engine, err := os.ReadFile(filepath.Join(target, "core", "engine.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "beta-core", string(engine))
}

func TestMergeCmdRejectsBadWinnerSpec(t *testing.T) {
	staging := setupEnv(t)
	target := t.TempDir()
	stageMod(t, staging, "alpha", map[string]string{"core/engine.cfg": "alpha-core"})
	stageMod(t, staging, "beta", map[string]string{"core/engine.cfg": "beta-core"})

	_, err := execute(t, "merge", "--staging", staging, "--winner", "nonsense", target)
	require.Error(t, err)
}

func TestPrioritySetAndList(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "priority", "set", "storm", "10", "--category", "Weather")
	require.NoError(t, err)
	assert.Contains(t, out, "Priority of storm set to 10")

	out, err = execute(t, "priority", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "storm")
	assert.Contains(t, out, "10")
	assert.Contains(t, out, "[Weather]")
}

func TestPriorityLockAndUnlock(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "priority", "set", "storm", "10")
	require.NoError(t, err)

	out, err := execute(t, "priority", "lock", "storm")
	require.NoError(t, err)
	assert.Contains(t, out, "Priority of storm locked")

	_, err = execute(t, "priority", "set", "storm", "99")
	require.Error(t, err, "locked entry must refuse updates")

	out, err = execute(t, "priority", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "locked")

	_, err = execute(t, "priority", "unlock", "storm")
	require.NoError(t, err)
	out, err = execute(t, "priority", "set", "storm", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "Priority of storm set to 99")
}

func TestPriorityListEmpty(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "priority", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No priorities persisted for this context.")
}

func TestPrioritySetRejectsNonInteger(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "priority", "set", "storm", "high")
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "modfuse version")
}
