// Package resolver turns detected conflicts into winning sources.
// Strategies form a closed set; critical conflicts are gated behind
// explicit user choices and are never resolved automatically, whatever
// the configuration says.
package resolver

import (
	"context"

	"github.com/rs/zerolog"

	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/priority"
	"modfuse/pkg/types"
)

// ContentLoader reads a source's content for one of its declared
// files. The merge strategy needs it; every other strategy works on
// metadata alone.
type ContentLoader interface {
	Load(source *types.ModSource, relPath string) ([]byte, error)
}

// Resolver resolves conflicts using the configured strategies.
type Resolver struct {
	logger zerolog.Logger
	loader ContentLoader
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithContentLoader wires the loader backing the merge strategy.
// Without one, merge resolutions fall back to higher-priority.
func WithContentLoader(l ContentLoader) ResolverOption {
	return func(r *Resolver) { r.loader = l }
}

// New creates a Resolver.
func New(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger: logging.GetLogger("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies one strategy to one conflict. Failures are reported
// in the result; the returned error is reserved for cancellation.
func (r *Resolver) Resolve(ctx context.Context, c *types.ModConflict, strategy types.ResolutionStrategy) (*types.ResolutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "resolution cancelled")
	}

	result := r.apply(c, strategy)
	r.logger.Debug().
		Str("conflict", c.ID).
		Str("strategy", strategy.String()).
		Bool("success", result.Success).
		Bool("fallback", result.UsedFallback).
		Msg("Conflict resolved")
	return result, nil
}

// ResolveAll resolves a batch. The effective strategy per conflict is
// the config's category override when present, else the default.
// Critical conflicts are always skipped with a failure result; one
// conflict failing never aborts the rest.
func (r *Resolver) ResolveAll(ctx context.Context, conflicts []*types.ModConflict, cfg *priority.Config) ([]*types.ResolutionResult, error) {
	results := make([]*types.ResolutionResult, 0, len(conflicts))
	for _, c := range conflicts {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "resolution cancelled")
		}

		if c.Severity == types.SeverityCritical {
			results = append(results, types.Failed(c.ID, cfg.StrategyFor(c.PrimaryCategory()),
				"requires manual resolution"))
			continue
		}

		result := r.apply(c, cfg.StrategyFor(c.PrimaryCategory()))
		if result.Success {
			c.Resolved = true
			c.Outcome = result
		}
		results = append(results, result)
	}
	return results, nil
}

// CanAutoResolve reports whether a conflict may be resolved without
// user input: never for critical severity, always for low, and for
// the rest only when the config allows non-breaking auto-resolution.
func (r *Resolver) CanAutoResolve(c *types.ModConflict, cfg *priority.Config) bool {
	if c.Severity == types.SeverityCritical {
		return false
	}
	return c.Severity == types.SeverityLow || cfg.AutoResolveNonBreaking
}

// ApplyUserChoice executes the option the user picked for a conflict.
// The option must be one the conflict offers; anything else is
// rejected as invalid input. Re-applying a choice to an
// already-resolved conflict is a no-op returning the prior outcome.
func (r *Resolver) ApplyUserChoice(ctx context.Context, c *types.ModConflict, option types.ResolutionOption) (*types.ResolutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "resolution cancelled")
	}

	if c.Resolved && c.Outcome != nil {
		r.logger.Debug().Str("conflict", c.ID).Msg("Conflict already resolved, returning prior outcome")
		return c.Outcome, nil
	}

	if !c.Offers(option) {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"conflict %s does not offer option %q", c.ID, option.Label)
	}

	var result *types.ResolutionResult
	if option.SourceID != "" {
		winner := c.SourceByID(option.SourceID)
		if winner == nil {
			result = types.Failed(c.ID, option.Strategy,
				"chosen source is not part of this conflict")
		} else {
			result = types.Resolved(c.ID, option.Strategy, winner)
		}
	} else {
		result = r.apply(c, option.Strategy)
	}

	if result.Success {
		c.Resolved = true
		c.Selected = &option
		c.Outcome = result
	}
	return result, nil
}

// apply dispatches to the strategy implementation and wraps the
// outcome into a result.
func (r *Resolver) apply(c *types.ModConflict, strategy types.ResolutionStrategy) *types.ResolutionResult {
	if strategy == types.StrategyMerge {
		return r.merge(c)
	}

	impl, ok := r.implFor(strategy)
	if !ok {
		return types.Failed(c.ID, strategy, "unsupported strategy "+strategy.String())
	}

	winner, err := impl.resolve(c)
	if err != nil {
		return types.Failed(c.ID, strategy, err.Error())
	}
	return types.Resolved(c.ID, strategy, winner)
}

func (r *Resolver) implFor(strategy types.ResolutionStrategy) (strategyImpl, bool) {
	switch strategy {
	case types.StrategyHigherPriority:
		return higherPriority{}, true
	case types.StrategyLowerPriority:
		return lowerPriority{}, true
	case types.StrategyMostRecent:
		return mostRecent{}, true
	case types.StrategyKeepExisting:
		return keepExisting{}, true
	case types.StrategyUseNew:
		return useNew{}, true
	case types.StrategyInteractive:
		return interactive{}, true
	default:
		return nil, false
	}
}
