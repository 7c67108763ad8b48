package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/organarr/organarr/lru"
	"github.com/organarr/organarr/organize"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables compiled-program caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = lru.New(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) Compiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lru.Cache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached.(CompiledFilter), nil
		}
	}

	// Compile against the static helpers; item properties are only known
	// at runtime.
	program, err := expr.Compile(expression,
		expr.Env(c.helperFuncs),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached programs
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached programs
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Evaluate evaluates the filter against one media item
func (f *exprFilter) Evaluate(item organize.Item) (bool, error) {
	env := createRuntimeEnvironment(item, f.helpers)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			Item:       item.File.Name,
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the item-independent helpers shared by
// compilation and evaluation.
func createHelperFunctions() map[string]any {
	env := make(map[string]any, 16)

	// Date helpers
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["daysAgo"] = func(days int) time.Time {
		return time.Now().AddDate(0, 0, -days)
	}
	env["monthsAgo"] = func(months int) time.Time {
		return time.Now().AddDate(0, -months, 0)
	}
	env["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	env["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse("2006-01-02", dateStr)
		return t
	}
	// String helpers
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	// Size helpers
	env["megabytes"] = func(n int) int64 {
		return int64(n) * 1024 * 1024
	}
	env["gigabytes"] = func(n int) int64 {
		return int64(n) * 1024 * 1024 * 1024
	}
	// Current time
	env["now"] = time.Now

	return env
}

// createRuntimeEnvironment creates the runtime environment for filter
// evaluation. helpers is shared between filters and never written to here.
func createRuntimeEnvironment(item organize.Item, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+32)

	maps.Copy(env, helpers)

	// The whole item for structured access
	env["Item"] = item

	// Item-specific helper functions
	env["hasEpisode"] = createHasEpisodeFunc(item.Parsed.Episodes)
	env["isSpecial"] = func() bool { return item.Parsed.MediaType.IsSpecial() }
	env["isAnime"] = func() bool { return item.Parsed.MediaType.IsAnime() }
	env["isAnthology"] = func() bool { return item.Traits.IsAnthology }
	env["isPremiere"] = func() bool { return item.Traits.IsPremiere }
	env["isFinale"] = func() bool { return item.Traits.IsFinale }
	env["isMultiPart"] = func() bool { return item.Traits.IsMultiPart }
	env["isMultiEpisode"] = func() bool { return item.File.MultiEpisode || len(item.Parsed.Episodes) > 1 }
	env["needsRename"] = func() bool { return item.NeedsRename() }
	env["isMatched"] = func() bool { return item.MatchRef != "" }

	// Direct properties for convenience
	env["Name"] = item.File.Name
	env["Path"] = item.File.Path
	env["Ext"] = item.File.Ext
	env["Size"] = item.File.Size
	env["ModTime"] = item.File.ModTime
	env["MediaType"] = string(item.Parsed.MediaType)
	env["Title"] = item.Parsed.Title
	env["Season"] = item.Parsed.Season
	env["Episodes"] = item.Parsed.Episodes
	env["EpisodeTitle"] = item.Parsed.EpisodeTitle
	env["Year"] = item.Parsed.Year
	env["Quality"] = item.Parsed.Quality
	env["Group"] = item.Parsed.Group
	env["Confidence"] = item.Parsed.Confidence
	env["SegmentCount"] = item.Traits.SegmentCount
	env["Proposed"] = item.ProposedName
	env["MatchRef"] = item.MatchRef
	env["MatchConfidence"] = item.MatchConfidence

	return env
}

func createHasEpisodeFunc(episodes []int) func(int) bool {
	return func(episode int) bool {
		return slices.Contains(episodes, episode)
	}
}
