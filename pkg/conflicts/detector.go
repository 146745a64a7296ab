package conflicts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/types"
)

// Classification thresholds. These are tunable constants, not derived
// from each mod's total file count.
const (
	// CriticalOverlapThreshold is the overlap size above which a
	// conflict is always critical.
	CriticalOverlapThreshold = 10

	// HighOverlapMin is the smallest overlap classified as high.
	HighOverlapMin = 6

	// MediumOverlapMin is the smallest overlap classified as medium.
	MediumOverlapMin = 3
)

// DefaultCoreFiles returns the files whose modification always makes a
// conflict critical, whatever the overlap size.
func DefaultCoreFiles() types.FileSet {
	return types.NewFileSet(
		"manifest.cfg",
		"core/engine.cfg",
		"core/game.cfg",
		"core/loadorder.cfg",
	)
}

// Detector performs pairwise conflict detection over mod sources.
type Detector struct {
	logger           zerolog.Logger
	coreFiles        types.FileSet
	criticalOverlap  int
	highOverlapMin   int
	mediumOverlapMin int
}

// Option customizes a Detector.
type Option func(*Detector)

// WithCoreFiles replaces the core-file allowlist.
func WithCoreFiles(files types.FileSet) Option {
	return func(d *Detector) { d.coreFiles = files }
}

// WithCriticalOverlap overrides the critical overlap threshold.
func WithCriticalOverlap(n int) Option {
	return func(d *Detector) { d.criticalOverlap = n }
}

// NewDetector creates a detector with the default thresholds and core
// file list.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		logger:           logging.GetLogger("conflicts.detector"),
		coreFiles:        DefaultCoreFiles(),
		criticalOverlap:  CriticalOverlapThreshold,
		highOverlapMin:   HighOverlapMin,
		mediumOverlapMin: MediumOverlapMin,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result carries the outcome of one detection run. Malformed holds
// per-source detection errors (nil file set, duplicate id); the
// affected sources are excluded from pairing but every other pair is
// still evaluated.
type Result struct {
	Conflicts []*types.ModConflict
	Malformed []error
}

// Detect scans every unordered source pair and returns the detected
// conflicts in pair order. The context is checked between pair
// evaluations; cancellation is the only fatal error.
func (d *Detector) Detect(ctx context.Context, sources []*types.ModSource) (*Result, error) {
	done := logging.LogOperationStart(d.logger, "detect")
	defer done()

	res := &Result{}
	valid := d.validate(sources, res)

	seq := 0
	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCancelled, "detection cancelled")
			}
			if c := d.evaluatePair(valid[i], valid[j], &seq); c != nil {
				res.Conflicts = append(res.Conflicts, c)
			}
		}
	}

	d.logger.Info().
		Int("sources", len(valid)).
		Int("conflicts", len(res.Conflicts)).
		Int("malformed", len(res.Malformed)).
		Msg("Detection finished")
	return res, nil
}

// DetectPair evaluates exactly one pair and returns nil when the
// sources are disjoint.
func (d *Detector) DetectPair(ctx context.Context, a, b *types.ModSource) (*types.ModConflict, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "detection cancelled")
	}
	if !a.Valid() {
		return nil, errors.Newf(errors.ErrSourceInvalid, "source %q has no file set", a.ID)
	}
	if !b.Valid() {
		return nil, errors.Newf(errors.ErrSourceInvalid, "source %q has no file set", b.ID)
	}
	seq := 0
	return d.evaluatePair(a, b, &seq), nil
}

// validate filters malformed sources, recording one error per source
// so that only pairs involving a bad source are lost.
func (d *Detector) validate(sources []*types.ModSource, res *Result) []*types.ModSource {
	seen := make(map[string]bool, len(sources))
	valid := make([]*types.ModSource, 0, len(sources))
	for _, s := range sources {
		switch {
		case s == nil || s.Files == nil:
			id := "<nil>"
			if s != nil {
				id = s.ID
			}
			res.Malformed = append(res.Malformed,
				errors.Newf(errors.ErrSourceInvalid, "source %q has no file set", id))
		case s.ID == "":
			res.Malformed = append(res.Malformed,
				errors.Newf(errors.ErrSourceInvalid, "source %q has an empty id", s.Name))
		case seen[s.ID]:
			res.Malformed = append(res.Malformed,
				errors.Newf(errors.ErrSourceInvalid, "duplicate source id %q", s.ID))
		default:
			seen[s.ID] = true
			valid = append(valid, s)
		}
	}
	return valid
}

func (d *Detector) evaluatePair(a, b *types.ModSource, seq *int) *types.ModConflict {
	overlap := a.Files.Intersect(b.Files)
	if overlap.Len() == 0 {
		return nil
	}

	ctype := inferType(overlap)
	severity := d.classify(a, b, overlap, ctype)
	*seq++

	conflict := &types.ModConflict{
		ID:            fmt.Sprintf("%s+%s", a.ID, b.ID),
		Type:          ctype,
		Severity:      severity,
		AffectedFiles: overlap,
		Sources:       []*types.ModSource{a, b},
		Description: fmt.Sprintf("%s and %s both modify %d file(s)",
			a.Name, b.Name, overlap.Len()),
	}
	conflict.Options = buildOptions(conflict)

	d.logger.Debug().
		Str("conflict", conflict.ID).
		Str("type", ctype.String()).
		Str("severity", severity.String()).
		Int("overlap", overlap.Len()).
		Msg("Conflict detected")
	return conflict
}

// classify assigns a severity following the fixed thresholds. The
// checks run from most to least severe so severity is monotonic in
// overlap size for a given conflict type.
func (d *Detector) classify(a, b *types.ModSource, overlap types.FileSet, ctype types.ConflictType) types.ConflictSeverity {
	size := overlap.Len()
	sameCategory := a.Category != "" && a.Category == b.Category

	switch {
	case size > d.criticalOverlap,
		d.touchesCore(a.Files) || d.touchesCore(b.Files),
		sameCategory && size > d.criticalOverlap:
		return types.SeverityCritical
	case size >= d.highOverlapMin, ctype == types.ConflictTypeConfiguration:
		return types.SeverityHigh
	case size >= d.mediumOverlapMin, ctype == types.ConflictTypeScript:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func (d *Detector) touchesCore(files types.FileSet) bool {
	for f := range d.coreFiles {
		if _, ok := files[f]; ok {
			return true
		}
	}
	return false
}
