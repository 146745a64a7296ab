// Package types defines the core data model shared across modfuse:
// mod sources, detected conflicts, resolution strategies and results,
// and the filesystem interface consumed by the transaction layer.
//
// The types here are deliberately free of behavior beyond small
// queries and constructors. Detection lives in pkg/conflicts,
// resolution in pkg/resolver, and mutation in pkg/transaction.
package types
