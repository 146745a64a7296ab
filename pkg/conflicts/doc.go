// Package conflicts implements pairwise overlap detection between mod
// sources. For every unordered pair of sources it intersects their
// declared file sets, infers what kind of content the overlap touches,
// and classifies how severe the overlap is. Critical conflicts are
// flagged for manual resolution; everything else can be handed to
// pkg/resolver.
package conflicts
