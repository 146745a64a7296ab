package conflicts_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modfuse/pkg/conflicts"
	"modfuse/pkg/types"
)

func source(id, category string, files ...string) *types.ModSource {
	s := types.NewModSource(id, id, category, types.NewFileSet(files...))
	s.AppliedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return s
}

func filesN(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s/file%02d.bin", prefix, i)
	}
	return out
}

func TestDetectDisjointSources(t *testing.T) {
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Weather", "weather/rain.bin"),
		source("b", "UI", "ui/hud.bin"),
	})

	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Malformed)
}

func TestDetectAffectedFilesIsExactIntersection(t *testing.T) {
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Weather", "shared/one.bin", "shared/two.bin", "a/only.bin"),
		source("b", "Sky", "Shared/One.bin", "shared/two.bin", "b/only.bin"),
	})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, []string{"shared/one.bin", "shared/two.bin"}, c.AffectedFiles.Sorted())
	assert.Equal(t, types.SeverityLow, c.Severity)
}

func TestDetectWeatherScenario(t *testing.T) {
	// Two Weather mods, priorities 10 and 20, one shared file.
	a := source("storm", "Weather", "weather/clouds.bin")
	b := source("drizzle", "Weather", "weather/clouds.bin")
	a.Priority, b.Priority = 10, 20

	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{a, b})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, types.SeverityLow, c.Severity)
	assert.False(t, c.RequiresUserIntervention())
}

func TestDetectThreeWayOverlapYieldsPairwiseConflicts(t *testing.T) {
	sources := []*types.ModSource{
		source("a", "Weather", "shared/sky.bin"),
		source("b", "Sky", "shared/sky.bin"),
		source("c", "Clouds", "shared/sky.bin"),
	}

	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), sources)

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 3)
	ids := []string{res.Conflicts[0].ID, res.Conflicts[1].ID, res.Conflicts[2].ID}
	assert.Equal(t, []string{"a+b", "a+c", "b+c"}, ids)
	for _, c := range res.Conflicts {
		assert.NotEqual(t, types.SeverityCritical, c.Severity)
	}
}

func TestDetectSameCategoryLargeOverlapIsCritical(t *testing.T) {
	shared := filesN("env", 15)
	a := source("a", "Environment", shared...)
	b := source("b", "Environment", shared...)

	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{a, b})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, types.SeverityCritical, c.Severity)
	assert.True(t, c.RequiresUserIntervention())
}

func TestDetectCoreFileTouchIsCritical(t *testing.T) {
	a := source("a", "Weather", "core/engine.cfg", "weather/sky.bin")
	b := source("b", "Sky", "weather/sky.bin")

	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{a, b})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, types.SeverityCritical, res.Conflicts[0].Severity)
}

func TestDetectSeverityMonotonicInOverlapSize(t *testing.T) {
	detector := conflicts.NewDetector()
	prev := types.SeverityLow
	for n := 1; n <= 12; n++ {
		shared := filesN("pack", n)
		res, err := detector.Detect(context.Background(), []*types.ModSource{
			source("a", "Weather", shared...),
			source("b", "Sky", shared...),
		})
		require.NoError(t, err)
		require.Len(t, res.Conflicts, 1)
		sev := res.Conflicts[0].Severity
		assert.GreaterOrEqual(t, int(sev), int(prev), "overlap %d lowered severity", n)
		prev = sev
	}
	assert.Equal(t, types.SeverityCritical, prev)
}

func TestDetectConfigurationTypeIsAtLeastHigh(t *testing.T) {
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Weather", "settings/weather.ini"),
		source("b", "Sky", "settings/weather.ini"),
	})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, types.ConflictTypeConfiguration, res.Conflicts[0].Type)
	assert.Equal(t, types.SeverityHigh, res.Conflicts[0].Severity)
}

func TestDetectScriptTypeIsAtLeastMedium(t *testing.T) {
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Gameplay", "scripts/rain.lua"),
		source("b", "Tweaks", "scripts/rain.lua"),
	})

	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, types.ConflictTypeScript, res.Conflicts[0].Type)
	assert.Equal(t, types.SeverityMedium, res.Conflicts[0].Severity)
}

func TestDetectMalformedSourceFailsOnlyItsPairs(t *testing.T) {
	bad := &types.ModSource{ID: "bad", Name: "bad"} // nil file set
	a := source("a", "Weather", "weather/sky.bin")
	b := source("b", "Sky", "weather/sky.bin")

	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{bad, a, b})

	require.NoError(t, err)
	require.Len(t, res.Malformed, 1)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "a+b", res.Conflicts[0].ID)
}

func TestDetectDuplicateIDReported(t *testing.T) {
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("dup", "Weather", "x.bin"),
		source("dup", "Sky", "y.bin"),
	})

	require.NoError(t, err)
	assert.Len(t, res.Malformed, 1)
}

func TestDetectCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	detector := conflicts.NewDetector()
	_, err := detector.Detect(ctx, []*types.ModSource{
		source("a", "Weather", "x.bin"),
		source("b", "Sky", "x.bin"),
	})
	assert.Error(t, err)
}

func TestDetectPair(t *testing.T) {
	detector := conflicts.NewDetector()

	c, err := detector.DetectPair(context.Background(),
		source("a", "Weather", "x.bin"),
		source("b", "Sky", "y.bin"))
	require.NoError(t, err)
	assert.Nil(t, c, "disjoint pair must produce no conflict")

	c, err = detector.DetectPair(context.Background(),
		source("a", "Weather", "x.bin"),
		source("b", "Sky", "x.bin"))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, types.SeverityLow, c.Severity)
}

func TestQueries(t *testing.T) {
	shared := filesN("env", 15)
	detector := conflicts.NewDetector()
	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Environment", shared...),
		source("b", "Environment", shared...),
		source("c", "Weather", "weather/sky.bin"),
		source("d", "Sky", "weather/sky.bin"),
	})
	require.NoError(t, err)

	assert.True(t, conflicts.HasCritical(res.Conflicts))
	assert.Len(t, conflicts.FilterBySeverity(res.Conflicts, types.SeverityLow), 1)
	assert.Len(t, conflicts.RequiringIntervention(res.Conflicts), 1)
}

func TestOptionsIncludeMergeOnlyWhenLegal(t *testing.T) {
	detector := conflicts.NewDetector()

	res, err := detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Weather", "textures/sky.dds"),
		source("b", "Sky", "textures/sky.dds"),
	})
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	for _, opt := range res.Conflicts[0].Options {
		assert.NotEqual(t, types.StrategyMerge, opt.Strategy)
	}

	res, err = detector.Detect(context.Background(), []*types.ModSource{
		source("a", "Weather", "settings/sky.ini"),
		source("b", "Sky", "settings/sky.ini"),
	})
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	found := false
	for _, opt := range res.Conflicts[0].Options {
		if opt.Strategy == types.StrategyMerge && opt.SourceID == "" {
			found = true
		}
	}
	assert.True(t, found, "configuration conflict should offer merge")
}
