package filter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/detect"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/organize"
	"github.com/organarr/organarr/scanner"
)

func pilotItem() organize.Item {
	return organize.Item{
		File: scanner.File{
			Path:    "/library/Breaking.Bad.S01E01.720p.mkv",
			Name:    "Breaking.Bad.S01E01.720p.mkv",
			Ext:     ".mkv",
			Size:    1_200_000_000,
			ModTime: time.Now().AddDate(0, -2, 0),
		},
		Parsed: namer.ParsedName{
			MediaType:    namer.MediaTV,
			Title:        "Breaking Bad",
			Season:       1,
			Episodes:     []int{1},
			EpisodeTitle: "Pilot",
			Quality:      "720p",
			Confidence:   0.95,
		},
		Traits:          detect.EpisodeType{SegmentCount: 1, IsPremiere: true},
		ProposedName:    "Breaking Bad/Season 01/Breaking Bad - S01E01 - Pilot [720p].mkv",
		TargetPath:      "/library/Breaking Bad/Season 01/Breaking Bad - S01E01 - Pilot [720p].mkv",
		MatchRef:        "tvdb-81189",
		MatchConfidence: 0.92,
	}
}

func generateTestItems(count int) []organize.Item {
	items := make([]organize.Item, count)

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("Show.S%02dE%02d.mkv", (i%4)+1, (i%10)+1)
		items[i] = organize.Item{
			File: scanner.File{
				Path:    "/library/" + name,
				Name:    name,
				Ext:     ".mkv",
				Size:    int64(i) * 10_000_000,
				ModTime: time.Now().AddDate(0, 0, -i%365),
			},
			Parsed: namer.ParsedName{
				MediaType:  namer.MediaTV,
				Title:      "Show",
				Season:     (i % 4) + 1,
				Episodes:   []int{(i % 10) + 1},
				Confidence: 0.9,
			},
			Traits: detect.EpisodeType{SegmentCount: 1},
		}
	}

	return items
}

func TestCompile(t *testing.T) {
	compiler := NewExprCompiler()

	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `Season == 1`,
		},
		{
			name:        "empty expression",
			expression:  "",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:        "blank expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `contains(Title, "unclosed`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `Season == 1 and hasEpisode(1) and contains(Title, "bad")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)

			if tt.wantErr {
				require.Error(t, err)
				var cerr *CompilationError
				require.ErrorAs(t, err, &cerr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, filter)
			assert.Equal(t, tt.expression, filter.Expression())
		})
	}
}

func TestEvaluate(t *testing.T) {
	item := pilotItem()

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"season match", `Season == 1`, true},
		{"season mismatch", `Season == 2`, false},
		{"has episode", `hasEpisode(1)`, true},
		{"missing episode", `hasEpisode(2)`, false},
		{"title contains", `contains(Title, "bad")`, true},
		{"name ends with", `endsWith(Name, ".mkv")`, true},
		{"media type", `MediaType == "tv_show"`, true},
		{"quality", `Quality == "720p"`, true},
		{"premiere", `isPremiere()`, true},
		{"not finale", `not isFinale()`, true},
		{"not anime", `not isAnime()`, true},
		{"not multi episode", `not isMultiEpisode()`, true},
		{"matched", `isMatched()`, true},
		{"match ref", `startsWith(MatchRef, "tvdb-")`, true},
		{"match confidence", `MatchConfidence > 0.9`, true},
		{"needs rename", `needsRename()`, true},
		{"size in range", `Size > gigabytes(1) and Size < gigabytes(2)`, true},
		{"older than a month", `ModTime < monthsAgo(1)`, true},
		{"newer than a year", `ModTime > yearsAgo(1)`, true},
		{"combined", `Season == 1 and isPremiere() and contains(EpisodeTitle, "pilot")`, true},
	}

	compiler := NewExprCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := compiler.Compile(tt.expression)
			require.NoError(t, err)

			got, err := filter.Evaluate(item)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateMultiEpisode(t *testing.T) {
	item := pilotItem()
	item.File.Name = "Breaking.Bad.S01E01E02.mkv"
	item.File.MultiEpisode = true
	item.Parsed.Episodes = []int{1, 2}
	item.Traits = detect.EpisodeType{IsAnthology: true, SegmentCount: 2}

	compiler := NewExprCompiler()

	for expression, expected := range map[string]bool{
		`isMultiEpisode()`:  true,
		`isAnthology()`:     true,
		`SegmentCount == 2`: true,
		`hasEpisode(2)`:     true,
		`hasEpisode(3)`:     false,
	} {
		filter, err := compiler.Compile(expression)
		require.NoError(t, err)

		got, err := filter.Evaluate(item)
		require.NoError(t, err)
		assert.Equal(t, expected, got, expression)
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	compiler := NewExprCompiler()

	// Undefined variables resolve to nil at runtime, so the comparison fails
	// during evaluation rather than compilation.
	filter, err := compiler.Compile(`NoSuchField > 5`)
	require.NoError(t, err)

	_, err = filter.Evaluate(pilotItem())
	require.Error(t, err)

	var eerr *EvaluationError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "Breaking.Bad.S01E01.720p.mkv", eerr.Item)
	assert.Contains(t, eerr.Expression, "NoSuchField")
}

func TestCompilerCache(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10)).(*exprCompiler)

	f1, err := compiler.Compile(`Season == 1`)
	require.NoError(t, err)
	f2, err := compiler.Compile(`Season == 1`)
	require.NoError(t, err)

	assert.Same(t, f1, f2)
	assert.Equal(t, 1, compiler.Size())

	compiler.Clear()
	assert.Equal(t, 0, compiler.Size())
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"answer": func() int { return 42 },
	}))

	filter, err := compiler.Compile(`answer() == 42`)
	require.NoError(t, err)

	got, err := filter.Evaluate(pilotItem())
	require.NoError(t, err)
	assert.True(t, got)
}

func TestConcurrentEvaluation(t *testing.T) {
	items := generateTestItems(1000)

	compiler := NewExprCompiler()
	filter, err := compiler.Compile(`Season == 1`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(4))
	matches, err := evaluator.Evaluate(context.Background(), filter, items)
	require.NoError(t, err)

	var expected []organize.Item
	for _, item := range items {
		ok, err := filter.Evaluate(item)
		require.NoError(t, err)
		if ok {
			expected = append(expected, item)
		}
	}

	require.Equal(t, len(expected), len(matches))
	for i := range expected {
		assert.Equal(t, expected[i].File.Name, matches[i].File.Name)
	}
}

func TestConcurrentEvaluationError(t *testing.T) {
	items := generateTestItems(500)

	compiler := NewExprCompiler()
	filter, err := compiler.Compile(`NoSuchField > 5`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator(WithWorkers(4))
	_, err = evaluator.Evaluate(context.Background(), filter, items)
	require.Error(t, err)

	var eerr *EvaluationError
	assert.ErrorAs(t, err, &eerr)
}

func TestEvaluateBatchSkipsBrokenFilter(t *testing.T) {
	items := generateTestItems(200)

	compiler := NewExprCompiler()
	good, err := compiler.Compile(`Season == 2`)
	require.NoError(t, err)
	broken, err := compiler.Compile(`NoSuchField > 5`)
	require.NoError(t, err)

	evaluator := NewConcurrentEvaluator()
	results, err := evaluator.EvaluateBatch(context.Background(), map[string]CompiledFilter{
		"good":   good,
		"broken": broken,
	}, items)
	require.NoError(t, err)

	assert.Contains(t, results, "good")
	assert.NotContains(t, results, "broken")
	assert.NotEmpty(t, results["good"])
}

func TestManager(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	err := manager.RegisterFilters(map[string]string{
		"season-one": `Season == 1`,
		"premieres":  `isPremiere()`,
	})
	require.NoError(t, err)

	assert.Len(t, manager.ListFilters(), 2)

	filter, exists := manager.GetFilter("season-one")
	require.True(t, exists)
	require.NotNil(t, filter)

	items := generateTestItems(100)
	matches, err := manager.EvaluateFilter(ctx, "season-one", items)
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	_, err = manager.EvaluateFilter(ctx, "missing", items)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	all, err := manager.EvaluateAll(ctx, items)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	selected, err := manager.EvaluateSelected(ctx, []string{"season-one"}, items)
	require.NoError(t, err)
	assert.Len(t, selected, 1)

	_, err = manager.EvaluateSelected(ctx, []string{"missing"}, items)
	require.Error(t, err)

	manager.UnregisterFilter("season-one")
	_, exists = manager.GetFilter("season-one")
	assert.False(t, exists)
}

func TestManagerRegisterFiltersAllOrNothing(t *testing.T) {
	manager := NewManager()

	err := manager.RegisterFilters(map[string]string{
		"valid":  `Season == 1`,
		"broken": `contains(Title, "unclosed`,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Empty(t, manager.ListFilters())
}

func TestManagerAdHocEvaluate(t *testing.T) {
	manager := NewManager()
	items := generateTestItems(50)

	matches, err := manager.Evaluate(context.Background(), `Season == 3`, items)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, 3, m.Parsed.Season)
	}
	assert.NotEmpty(t, matches)

	_, err = manager.Evaluate(context.Background(), "", items)
	require.Error(t, err)
	var cerr *CompilationError
	assert.ErrorAs(t, err, &cerr)
}
