package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Scripts\\Weather.lua", "scripts/weather.lua"},
		{"scripts/weather.lua", "scripts/weather.lua"},
		{"./config/game.ini", "config/game.ini"},
		{"  Textures/Rock.DDS  ", "textures/rock.dds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "input %q", tt.in)
	}
}

func TestFileSetEquivalentPathsCollapse(t *testing.T) {
	s := NewFileSet("Scripts\\Weather.lua", "scripts/weather.lua", "", "  ")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("SCRIPTS/WEATHER.LUA"))
}

func TestFileSetIntersect(t *testing.T) {
	a := NewFileSet("a.txt", "b.txt", "c.txt")
	b := NewFileSet("B.TXT", "c.txt", "d.txt")

	both := a.Intersect(b)
	assert.Equal(t, []string{"b.txt", "c.txt"}, both.Sorted())

	// Intersection never mutates its inputs.
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 3, b.Len())
}

func TestFileSetIntersectDisjoint(t *testing.T) {
	a := NewFileSet("a.txt")
	b := NewFileSet("b.txt")
	assert.Equal(t, 0, a.Intersect(b).Len())
}

func TestFileSetClone(t *testing.T) {
	a := NewFileSet("a.txt")
	c := a.Clone()
	c.Add("b.txt")
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 2, c.Len())
}

func TestModSourceValid(t *testing.T) {
	assert.True(t, NewModSource("id", "name", "cat", NewFileSet()).Valid())
	assert.False(t, (&ModSource{Name: "no-id", Files: NewFileSet()}).Valid())
	assert.False(t, (&ModSource{ID: "no-files"}).Valid())
	assert.False(t, (*ModSource)(nil).Valid())
}

func TestStrategyValidity(t *testing.T) {
	for _, s := range AllStrategies() {
		assert.True(t, s.IsValid(), s.String())
		assert.NotEmpty(t, s.Description())
	}
	assert.False(t, ResolutionStrategy("coin-flip").IsValid())
}
