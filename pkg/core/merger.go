// Package core orchestrates a merge run: priorities are applied to
// the selected sources, conflicts are detected and resolved, and the
// winning file mutations are executed inside one transaction. The
// core never blocks on user input: when critical or non-auto-resolvable
// conflicts exist it returns a needs-decision outcome and expects the
// caller to apply user choices and run again.
package core

import (
	"context"

	"github.com/rs/zerolog"

	"modfuse/pkg/conflicts"
	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/priority"
	"modfuse/pkg/resolver"
	"modfuse/pkg/types"
)

// Config wires a Merger's collaborators.
type Config struct {
	// FS performs the actual file mutations.
	FS types.FS

	// Provider supplies the selected sources and their payload
	// content.
	Provider types.ContentProvider

	// Priorities is the persisted precedence service.
	Priorities *priority.Service

	// TargetDir is the root of the tree being merged into.
	TargetDir string

	// BackupDir stages transaction backups.
	BackupDir string

	// Detector overrides the default conflict detector.
	Detector *conflicts.Detector

	// Progress receives transaction progress. Optional.
	Progress types.ProgressReporter

	// DryRun plans the transaction without executing it.
	DryRun bool
}

// Merger runs the detect-resolve-mutate pipeline.
type Merger struct {
	logger     zerolog.Logger
	cfg        Config
	detector   *conflicts.Detector
	resolver   *resolver.Resolver
	priorities *priority.Service
}

// NewMerger creates a Merger from the given configuration.
func NewMerger(cfg Config) *Merger {
	det := cfg.Detector
	if det == nil {
		det = conflicts.NewDetector()
	}
	m := &Merger{
		logger:     logging.GetLogger("core.merger"),
		cfg:        cfg,
		detector:   det,
		priorities: cfg.Priorities,
	}
	m.resolver = resolver.New(resolver.WithContentLoader(&payloadLoader{fs: cfg.FS, provider: cfg.Provider}))
	return m
}

// Resolver exposes the resolver so callers can apply user choices to
// conflicts flagged as needing decisions.
func (m *Merger) Resolver() *resolver.Resolver { return m.resolver }

// Result is the outcome of one merge run.
type Result struct {
	// Conflicts is every detected conflict, in detection order.
	Conflicts []*types.ModConflict

	// NeedsDecision lists conflicts that must be decided externally
	// before the merge can apply. Non-empty implies Applied is false.
	NeedsDecision []*types.ModConflict

	// Resolutions holds the per-conflict resolution outcomes.
	Resolutions []*types.ResolutionResult

	// Malformed reports sources excluded from detection.
	Malformed []error

	// PlannedOps is the number of mutations planned.
	PlannedOps int

	// Applied is true once the transaction committed.
	Applied bool

	// sources is the priority-ordered source list backing this run,
	// kept so a follow-up Apply can plan without re-detection.
	sources []*types.ModSource
}

// Run executes one merge pass for the given target context.
func (m *Merger) Run(ctx context.Context, contextKey string) (*Result, error) {
	done := logging.LogOperationStart(m.logger, "merge-run")
	defer done()

	sources, err := m.cfg.Provider.Sources()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to collect mod sources")
	}

	ordered, err := m.priorities.ApplyPriorities(sources, contextKey)
	if err != nil {
		return nil, err
	}

	detection, err := m.detector.Detect(ctx, ordered)
	if err != nil {
		return nil, err
	}

	cfg, err := m.priorities.Load(contextKey)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Conflicts: detection.Conflicts,
		Malformed: detection.Malformed,
		sources:   ordered,
	}

	var pending []*types.ModConflict
	var decided []*types.ResolutionResult
	for _, c := range detection.Conflicts {
		switch {
		case c.Resolved && c.Outcome != nil:
			decided = append(decided, c.Outcome)
		case !m.resolver.CanAutoResolve(c, cfg):
			result.NeedsDecision = append(result.NeedsDecision, c)
		default:
			pending = append(pending, c)
		}
	}

	if len(result.NeedsDecision) > 0 {
		m.logger.Info().
			Int("needsDecision", len(result.NeedsDecision)).
			Msg("Merge needs external decisions before it can apply")
		return result, nil
	}

	return m.finish(ctx, result, pending, decided, cfg)
}

// Apply continues a run that stopped for external decisions. Every
// conflict previously flagged in NeedsDecision must have been decided
// through the resolver; otherwise the same needs-decision result is
// returned again. Prior auto-resolvable conflicts are re-resolved so
// one transaction covers the whole plan.
func (m *Merger) Apply(ctx context.Context, contextKey string, prior *Result) (*Result, error) {
	done := logging.LogOperationStart(m.logger, "merge-apply")
	defer done()

	if prior == nil || prior.sources == nil {
		return nil, errors.New(errors.ErrInvalidInput, "apply requires the result of a prior run")
	}

	cfg, err := m.priorities.Load(contextKey)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Conflicts: prior.Conflicts,
		Malformed: prior.Malformed,
		sources:   prior.sources,
	}

	var pending []*types.ModConflict
	var decided []*types.ResolutionResult
	for _, c := range prior.Conflicts {
		switch {
		case c.Resolved && c.Outcome != nil:
			decided = append(decided, c.Outcome)
		case c.RequiresUserIntervention() || !m.resolver.CanAutoResolve(c, cfg):
			result.NeedsDecision = append(result.NeedsDecision, c)
		default:
			pending = append(pending, c)
		}
	}

	if len(result.NeedsDecision) > 0 {
		m.logger.Info().
			Int("needsDecision", len(result.NeedsDecision)).
			Msg("Merge still needs external decisions")
		return result, nil
	}

	return m.finish(ctx, result, pending, decided, cfg)
}

// finish resolves the remaining conflicts, plans the mutations and,
// unless this is a dry run, executes them.
func (m *Merger) finish(ctx context.Context, result *Result, pending []*types.ModConflict, decided []*types.ResolutionResult, cfg *priority.Config) (*Result, error) {
	resolutions, err := m.resolver.ResolveAll(ctx, pending, cfg)
	if err != nil {
		return nil, err
	}
	result.Resolutions = append(decided, resolutions...)

	plan, err := m.plan(result.sources, result.Conflicts, result.Resolutions)
	if err != nil {
		return nil, err
	}
	result.PlannedOps = len(plan)

	if m.cfg.DryRun {
		m.logger.Info().Int("operations", len(plan)).Msg("Dry run, transaction not executed")
		return result, nil
	}

	if err := m.apply(ctx, plan); err != nil {
		return nil, err
	}
	result.Applied = true
	return result, nil
}
