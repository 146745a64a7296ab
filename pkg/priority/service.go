package priority

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	ktoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/paths"
	"modfuse/pkg/types"
)

// DefaultCacheTTL is the staleness window for loaded configs.
// Priority edits are infrequent and user-driven, so readers inside
// the window may see slightly stale data.
const DefaultCacheTTL = 30 * time.Second

// Service loads, caches, and persists priority configuration. The
// cache is owned by the instance, keyed by context and load time;
// there is no process-global state.
type Service struct {
	logger zerolog.Logger
	paths  paths.Paths
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    *Config
	cacheKey  string
	cacheTime time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithTTL overrides the cache staleness window.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock injects a time source, letting tests control staleness
// deterministically.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a priority service backed by the given paths.
func NewService(p paths.Paths, opts ...ServiceOption) *Service {
	s := &Service{
		logger: logging.GetLogger("priority.service"),
		paths:  p,
		ttl:    DefaultCacheTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the priority configuration for the given target
// context: the cached copy when fresh, otherwise the persisted state,
// otherwise a default. The returned config is a copy; mutations are
// only visible after Save.
func (s *Service) Load(contextKey string) (*Config, error) {
	s.mu.Lock()
	if s.cached != nil && s.cacheKey == contextKey && s.now().Sub(s.cacheTime) < s.ttl {
		cfg := s.cached.Clone()
		s.mu.Unlock()
		return cfg, nil
	}
	s.mu.Unlock()

	cfg, err := s.read(contextKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = cfg.Clone()
	s.cacheKey = contextKey
	s.cacheTime = s.now()
	s.mu.Unlock()

	return cfg, nil
}

// Save persists the configuration, then swaps the cache so readers
// never observe a half-written config.
func (s *Service) Save(cfg *Config, contextKey string) error {
	cfg.stamp(s.now())

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigSave, "failed to encode priority config")
	}

	path := s.paths.PriorityConfigPath(contextKey)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to create config directory for %s", path)
	}

	// Write-then-rename keeps the persisted file whole even if the
	// process dies mid-save.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to stage priority config %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrConfigSave, "failed to replace priority config %s", path)
	}

	s.mu.Lock()
	s.cached = cfg.Clone()
	s.cacheKey = contextKey
	s.cacheTime = s.now()
	s.mu.Unlock()

	s.logger.Debug().Str("context", contextKey).Str("path", path).Msg("Priority config saved")
	return nil
}

// SetPriority upserts one mod's priority and persists immediately.
// Locked entries are refused.
func (s *Service) SetPriority(contextKey, modID, modName, category string, priority int) error {
	cfg, err := s.Load(contextKey)
	if err != nil {
		return err
	}
	if err := cfg.Upsert(modID, modName, category, priority); err != nil {
		return err
	}
	return s.Save(cfg, contextKey)
}

// SetLocked locks or unlocks a mod's priority entry and persists
// immediately.
func (s *Service) SetLocked(contextKey, modID string, locked bool) error {
	cfg, err := s.Load(contextKey)
	if err != nil {
		return err
	}
	if err := cfg.SetLocked(modID, locked); err != nil {
		return err
	}
	return s.Save(cfg, contextKey)
}

// GetPriority returns a mod's configured priority, or the sentinel
// default for unknown ids.
func (s *Service) GetPriority(contextKey, modID string) (int, error) {
	cfg, err := s.Load(contextKey)
	if err != nil {
		return 0, err
	}
	return cfg.PriorityOf(modID), nil
}

// ApplyPriorities stamps each source's priority from the config and
// returns a new slice sorted ascending by priority, ties broken by
// name. The input sources are not mutated; this ordering is the
// precedence the resolver consumes.
func (s *Service) ApplyPriorities(sources []*types.ModSource, contextKey string) ([]*types.ModSource, error) {
	cfg, err := s.Load(contextKey)
	if err != nil {
		return nil, err
	}

	out := make([]*types.ModSource, len(sources))
	for i, src := range sources {
		c := *src
		c.Priority = cfg.PriorityOf(src.ID)
		out[i] = &c
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// InvalidateCache drops the cached config eagerly, forcing the next
// Load to hit persisted state. Call after out-of-band mutation.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	s.cached = nil
	s.cacheKey = ""
	s.mu.Unlock()
}

// read loads persisted state or builds a default when absent.
func (s *Service) read(contextKey string) (*Config, error) {
	path := s.paths.PriorityConfigPath(contextKey)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.logger.Debug().Str("context", contextKey).Msg("No persisted priority config, using defaults")
		return DefaultConfig(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), ktoml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load priority config %s", path)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse priority config %s", path)
	}
	if cfg.CategoryStrategies == nil {
		cfg.CategoryStrategies = map[string]types.ResolutionStrategy{}
	}
	return cfg, nil
}
