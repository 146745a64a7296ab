package resolver

import (
	"modfuse/pkg/errors"
	"modfuse/pkg/types"
)

// strategyImpl is one member of the closed set of resolution
// strategies. Each picks a winning source for a conflict; the
// interactive member is a sentinel that always requires external
// input.
type strategyImpl interface {
	resolve(c *types.ModConflict) (*types.ModSource, error)
}

type higherPriority struct{}

func (higherPriority) resolve(c *types.ModConflict) (*types.ModSource, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrNoWinner, "conflict has no sources")
	}
	winner := c.Sources[0]
	for _, s := range c.Sources[1:] {
		// Strict less-than keeps the first source on ties.
		if s.Priority < winner.Priority {
			winner = s
		}
	}
	return winner, nil
}

type lowerPriority struct{}

func (lowerPriority) resolve(c *types.ModConflict) (*types.ModSource, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrNoWinner, "conflict has no sources")
	}
	winner := c.Sources[0]
	for _, s := range c.Sources[1:] {
		if s.Priority > winner.Priority {
			winner = s
		}
	}
	return winner, nil
}

type mostRecent struct{}

func (mostRecent) resolve(c *types.ModConflict) (*types.ModSource, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrNoWinner, "conflict has no sources")
	}
	winner := c.Sources[0]
	for _, s := range c.Sources[1:] {
		if s.AppliedAt.After(winner.AppliedAt) {
			winner = s
		}
	}
	return winner, nil
}

// keepExisting keeps the first source, which represents the
// previously applied state.
type keepExisting struct{}

func (keepExisting) resolve(c *types.ModConflict) (*types.ModSource, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrNoWinner, "conflict has no sources")
	}
	return c.Sources[0], nil
}

// useNew picks the last source, which represents the newly added
// package.
type useNew struct{}

func (useNew) resolve(c *types.ModConflict) (*types.ModSource, error) {
	if len(c.Sources) == 0 {
		return nil, errors.New(errors.ErrNoWinner, "conflict has no sources")
	}
	return c.Sources[len(c.Sources)-1], nil
}

type interactive struct{}

func (interactive) resolve(c *types.ModConflict) (*types.ModSource, error) {
	return nil, errors.New(errors.ErrManualRequired,
		"interactive resolution requires external input")
}
