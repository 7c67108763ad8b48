// Package filter compiles expr-lang expressions into predicates over media
// items and evaluates them, concurrently for large libraries. Expressions
// see the parsed fields of each item plus helpers like hasEpisode or
// needsRename; presets from the configuration register under a name.
package filter

import (
	"context"

	"github.com/organarr/organarr/organize"
)

// Filter defines the basic interface for media item filters.
type Filter interface {
	// Evaluate checks whether an item matches the filter criteria.
	Evaluate(item organize.Item) (bool, error)
}

// CompiledFilter represents a pre-compiled filter ready for evaluation.
// Compiled filters are safe for concurrent use.
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression.
	Expression() string
}

// Compiler compiles filter expressions into executable filters.
type Compiler interface {
	// Compile parses and compiles a filter expression.
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against item lists.
type Evaluator interface {
	// Evaluate returns the items the filter accepts, in input order.
	Evaluate(ctx context.Context, filter CompiledFilter, items []organize.Item) ([]organize.Item, error)
}
