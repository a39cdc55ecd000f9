package retrieval

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeyRudd/ai-fitness-coach/internal/knowledge"
)

func testChunks() []knowledge.Chunk {
	return []knowledge.Chunk{
		{
			SourcePath: "kb/nutrition.md",
			Text:       "Nutrition Basics — Protein\nProtein rebuilds muscle. Anchor each meal around a palm-sized portion of eggs, chicken, fish, or beans.",
			Index:      0,
		},
		{
			SourcePath: "kb/training.md",
			Text:       "Getting Started\nTwo full-body sessions a week plus a short daily walk is enough to build the habit.",
			Index:      1,
		},
		{
			SourcePath: "kb/recovery.md",
			Text:       "Recovery And Form\nSleep is where muscle gets built. Rest days speed up recovery between lifting sessions.",
			Index:      2,
		},
	}
}

func TestBuild_RequiresChunks(t *testing.T) {
	ix := NewIndex(nil)
	assert.ErrorIs(t, ix.Build(), ErrNoChunks)
	assert.Equal(t, "unbuilt", ix.Status().State)
}

func TestBuild_Idempotent(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())
	require.NoError(t, ix.Build())

	status := ix.Status()
	assert.Equal(t, "ready", status.State)
	assert.Equal(t, "tfidf", status.Backend)
	assert.Equal(t, 3, status.Chunks)
}

func TestBuild_Concurrent(t *testing.T) {
	ix := NewIndex(testChunks())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ix.Retrieve("protein", 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, "ready", ix.Status().State)
}

func TestRetrieve_FindsRelevantChunk(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())

	results := ix.Retrieve("how much protein should I eat", 2)

	require.NotEmpty(t, results)
	assert.Equal(t, "nutrition.md", results[0].Source)
	assert.Contains(t, results[0].Text, "Protein rebuilds muscle")
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())

	assert.Empty(t, ix.Retrieve("", 4))
	assert.Empty(t, ix.Retrieve("   ", 4))
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	ix := NewIndex(nil)
	assert.Empty(t, ix.Retrieve("protein", 4))
}

func TestRetrieve_LazyBuild(t *testing.T) {
	ix := NewIndex(testChunks())

	results := ix.Retrieve("daily walk habit", 2)

	require.NotEmpty(t, results)
	assert.Equal(t, "ready", ix.Status().State)
}

func TestRetrieve_TopKBound(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())

	results := ix.Retrieve("muscle recovery sleep protein walk sessions", 2)
	assert.LessOrEqual(t, len(results), 2)
}

func TestRetrieve_SynonymExpansion(t *testing.T) {
	chunks := []knowledge.Chunk{
		{
			SourcePath: "kb/calories.md",
			Text:       "Calories And Maintenance\nYour maintenance calories is the energy you spend in a normal day, sometimes called daily burn.",
			Index:      0,
		},
		{
			SourcePath: "kb/form.md",
			Text:       "Learning Good Form\nFilm one set from the side once a week and slow the lowering phase.",
			Index:      1,
		},
	}
	ix := NewIndex(chunks)
	require.NoError(t, ix.Build())

	results := ix.Retrieve("tdee", 1)

	require.NotEmpty(t, results)
	assert.Equal(t, "calories.md", results[0].Source)
}

func TestRetrieve_KeywordFallbackWhileBuildInFlight(t *testing.T) {
	ix := NewIndex(testChunks())
	ix.state = StateBuilding

	results := ix.Retrieve("recovery sleep", 2)

	require.NotEmpty(t, results)
	assert.Equal(t, "recovery.md", results[0].Source)

	hybrid := ix.HybridRetrieve("recovery sleep", 2)
	require.NotEmpty(t, hybrid)
	assert.Equal(t, "recovery.md", hybrid[0].Source)
}

func TestKeywordFallback_SubstringCounts(t *testing.T) {
	ix := NewIndex(testChunks())

	results := ix.keywordFallback("recovery sleep", 2)

	require.NotEmpty(t, results)
	assert.Equal(t, "recovery.md", results[0].Source)
}

func TestHybridRetrieve_FusesRankings(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())

	results := ix.HybridRetrieve("protein meals", 2)

	require.NotEmpty(t, results)
	assert.Equal(t, "nutrition.md", results[0].Source)
}

func TestHybridRetrieve_EmptyQuery(t *testing.T) {
	ix := NewIndex(testChunks())
	require.NoError(t, ix.Build())

	assert.Empty(t, ix.HybridRetrieve("", 4))
}

func TestExpandQuery(t *testing.T) {
	expanded := expandQuery("what is my TDEE?")

	assert.True(t, strings.HasPrefix(expanded, "what is my TDEE?"))
	assert.Contains(t, expanded, "maintenance calories")
	assert.Contains(t, expanded, "daily burn")

	assert.Equal(t, "squats", expandQuery("squats"))
}

func TestTokenize_Bigrams(t *testing.T) {
	tokens := tokenize("daily burn rate")

	assert.Contains(t, tokens, "daily")
	assert.Contains(t, tokens, "daily burn")
	assert.Contains(t, tokens, "burn rate")
}
