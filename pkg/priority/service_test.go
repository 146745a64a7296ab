package priority_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modfuse/pkg/errors"
	"modfuse/pkg/paths"
	"modfuse/pkg/priority"
	"modfuse/pkg/types"
)

// fakeClock lets tests move the cache staleness window by hand.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newService(t *testing.T) (*priority.Service, *fakeClock) {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	clock := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	svc := priority.NewService(paths.New(), priority.WithClock(clock.Now))
	return svc, clock
}

func TestLoadReturnsDefaultWhenAbsent(t *testing.T) {
	svc, _ := newService(t)

	cfg, err := svc.Load("target")
	require.NoError(t, err)
	assert.Empty(t, cfg.Entries)
	assert.Equal(t, types.StrategyHigherPriority, cfg.DefaultStrategy)
	assert.True(t, cfg.AutoResolveNonBreaking)
}

func TestSaveRoundTrip(t *testing.T) {
	svc, _ := newService(t)

	cfg, err := svc.Load("target")
	require.NoError(t, err)
	require.NoError(t, cfg.Upsert("storm", "Storm Overhaul", "Weather", 10))
	cfg.CategoryStrategies["Weather"] = types.StrategyMostRecent
	cfg.AutoResolveNonBreaking = false
	require.NoError(t, svc.Save(cfg, "target"))

	svc.InvalidateCache()
	got, err := svc.Load("target")
	require.NoError(t, err)
	assert.Equal(t, 10, got.PriorityOf("storm"))
	assert.Equal(t, types.StrategyMostRecent, got.StrategyFor("Weather"))
	assert.Equal(t, types.StrategyHigherPriority, got.StrategyFor("UI"))
	assert.False(t, got.AutoResolveNonBreaking)
	assert.NotEmpty(t, got.LastModified)
}

func TestPriorityOfUnknownIsSentinelDefault(t *testing.T) {
	cfg := priority.DefaultConfig()
	assert.Equal(t, types.DefaultPriority, cfg.PriorityOf("nobody"))
}

func TestCacheWithinTTL(t *testing.T) {
	svc, clock := newService(t)

	require.NoError(t, svc.SetPriority("target", "storm", "Storm", "Weather", 5))

	// Remove the persisted file; the cached copy must still serve
	// reads inside the TTL window.
	p := paths.New().PriorityConfigPath("target")
	require.NoError(t, os.Remove(p))

	clock.Advance(priority.DefaultCacheTTL / 2)
	got, err := svc.GetPriority("target", "storm")
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	// Past the TTL the service re-reads, and the file is gone.
	clock.Advance(priority.DefaultCacheTTL)
	got, err = svc.GetPriority("target", "storm")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPriority, got)
}

func TestCacheKeyedByContext(t *testing.T) {
	svc, _ := newService(t)

	require.NoError(t, svc.SetPriority("ctx-a", "storm", "Storm", "Weather", 5))

	// A different context key must not serve ctx-a's cached config.
	got, err := svc.GetPriority("ctx-b", "storm")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPriority, got)
}

func TestLoadReturnsCopy(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.SetPriority("target", "storm", "Storm", "Weather", 5))

	cfg, err := svc.Load("target")
	require.NoError(t, err)
	require.NoError(t, cfg.Upsert("storm", "Storm", "Weather", 99))

	// The unsaved mutation must not leak into the cache.
	again, err := svc.Load("target")
	require.NoError(t, err)
	assert.Equal(t, 5, again.PriorityOf("storm"))
}

func TestApplyPrioritiesIsPureAndSorted(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.SetPriority("target", "b", "Bravo", "Weather", 10))
	require.NoError(t, svc.SetPriority("target", "c", "Charlie", "Weather", 10))

	sources := []*types.ModSource{
		types.NewModSource("a", "Alpha", "Weather", types.NewFileSet("a.bin")),
		types.NewModSource("c", "Charlie", "Weather", types.NewFileSet("c.bin")),
		types.NewModSource("b", "Bravo", "Weather", types.NewFileSet("b.bin")),
	}

	out, err := svc.ApplyPriorities(sources, "target")
	require.NoError(t, err)

	// Sorted ascending by priority, ties by name; unknown id keeps
	// the sentinel default.
	require.Len(t, out, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, 10, out[0].Priority)
	assert.Equal(t, types.DefaultPriority, out[2].Priority)

	// Inputs are untouched.
	assert.Equal(t, types.DefaultPriority, sources[1].Priority)
}

func TestLockedEntryRefusesUpdates(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.SetPriority("target", "storm", "Storm", "Weather", 5))
	require.NoError(t, svc.SetLocked("target", "storm", true))

	err := svc.SetPriority("target", "storm", "Storm", "Weather", 99)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEntryLocked))

	svc.InvalidateCache()
	got, err := svc.GetPriority("target", "storm")
	require.NoError(t, err)
	assert.Equal(t, 5, got, "locked priority must stand")

	// Unlocking makes the entry writable again.
	require.NoError(t, svc.SetLocked("target", "storm", false))
	require.NoError(t, svc.SetPriority("target", "storm", "Storm", "Weather", 99))
	got, err = svc.GetPriority("target", "storm")
	require.NoError(t, err)
	assert.Equal(t, 99, got)
}

func TestSetLockedUnknownMod(t *testing.T) {
	svc, _ := newService(t)
	err := svc.SetLocked("target", "ghost", true)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestSetPriorityPersists(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.SetPriority("target", "storm", "Storm", "Weather", 1))
	require.NoError(t, svc.SetPriority("target", "storm", "Storm II", "Weather", 2))

	svc.InvalidateCache()
	cfg, err := svc.Load("target")
	require.NoError(t, err)
	require.Len(t, cfg.Entries, 1, "upsert must not duplicate entries")
	assert.Equal(t, "Storm II", cfg.Entries[0].ModName)
	assert.Equal(t, 2, cfg.Entries[0].Priority)
}
