// Package priority persists and caches the precedence configuration
// that decides which mod wins a non-critical conflict. One TOML file
// is kept per target context; the service layer adds a small
// staleness-window cache owned by the service instance.
package priority

import (
	"time"

	"modfuse/pkg/errors"
	"modfuse/pkg/types"
)

// Entry is one mod's persisted precedence record. A locked entry
// refuses priority updates until it is unlocked again.
type Entry struct {
	ModID    string `koanf:"mod_id" toml:"mod_id"`
	ModName  string `koanf:"mod_name" toml:"mod_name"`
	Category string `koanf:"category" toml:"category"`
	Priority int    `koanf:"priority" toml:"priority"`
	Locked   bool   `koanf:"locked" toml:"locked"`
}

// Config is the persisted priority configuration for one target
// context.
type Config struct {
	// LastModified is the RFC3339 timestamp of the last save.
	LastModified string `koanf:"last_modified" toml:"last_modified"`

	// Entries lists the known mods; ModID is unique.
	Entries []Entry `koanf:"entries" toml:"entries"`

	// DefaultStrategy resolves conflicts with no category override.
	DefaultStrategy types.ResolutionStrategy `koanf:"default_strategy" toml:"default_strategy"`

	// AutoResolveNonBreaking allows automatic resolution of medium
	// and high severity conflicts. Low severity conflicts are always
	// auto-resolvable; critical ones never are.
	AutoResolveNonBreaking bool `koanf:"auto_resolve_non_breaking" toml:"auto_resolve_non_breaking"`

	// CategoryStrategies maps a mod category to the strategy used for
	// conflicts in that category.
	CategoryStrategies map[string]types.ResolutionStrategy `koanf:"category_strategies" toml:"category_strategies"`
}

// DefaultConfig returns the configuration used when no state has been
// persisted for a context yet.
func DefaultConfig() *Config {
	return &Config{
		Entries:                []Entry{},
		DefaultStrategy:        types.StrategyHigherPriority,
		AutoResolveNonBreaking: true,
		CategoryStrategies:     map[string]types.ResolutionStrategy{},
	}
}

// Entry returns the persisted record for the given mod id, or nil.
func (c *Config) Entry(modID string) *Entry {
	for i := range c.Entries {
		if c.Entries[i].ModID == modID {
			return &c.Entries[i]
		}
	}
	return nil
}

// PriorityOf returns the configured priority for a mod, or the
// sentinel default for unknown ids.
func (c *Config) PriorityOf(modID string) int {
	if e := c.Entry(modID); e != nil {
		return e.Priority
	}
	return types.DefaultPriority
}

// Upsert inserts or updates a mod's entry. Updating a locked entry
// fails; unlock it first.
func (c *Config) Upsert(modID, modName, category string, priority int) error {
	if e := c.Entry(modID); e != nil {
		if e.Locked {
			return errors.Newf(errors.ErrEntryLocked,
				"priority of %s is locked", modID)
		}
		e.ModName = modName
		e.Category = category
		e.Priority = priority
		return nil
	}
	c.Entries = append(c.Entries, Entry{
		ModID:    modID,
		ModName:  modName,
		Category: category,
		Priority: priority,
	})
	return nil
}

// SetLocked locks or unlocks a mod's entry.
func (c *Config) SetLocked(modID string, locked bool) error {
	e := c.Entry(modID)
	if e == nil {
		return errors.Newf(errors.ErrNotFound, "no priority entry for %s", modID)
	}
	e.Locked = locked
	return nil
}

// StrategyFor returns the per-category override for the given
// category, or the default strategy.
func (c *Config) StrategyFor(category string) types.ResolutionStrategy {
	if s, ok := c.CategoryStrategies[category]; ok && s.IsValid() {
		return s
	}
	if c.DefaultStrategy.IsValid() {
		return c.DefaultStrategy
	}
	return types.StrategyHigherPriority
}

// Clone returns a deep copy so cached state is never aliased by
// callers mutating a loaded config.
func (c *Config) Clone() *Config {
	out := &Config{
		LastModified:           c.LastModified,
		Entries:                make([]Entry, len(c.Entries)),
		DefaultStrategy:        c.DefaultStrategy,
		AutoResolveNonBreaking: c.AutoResolveNonBreaking,
		CategoryStrategies:     make(map[string]types.ResolutionStrategy, len(c.CategoryStrategies)),
	}
	copy(out.Entries, c.Entries)
	for k, v := range c.CategoryStrategies {
		out.CategoryStrategies[k] = v
	}
	return out
}

// stamp updates LastModified to the given time.
func (c *Config) stamp(now time.Time) {
	c.LastModified = now.UTC().Format(time.RFC3339)
}
