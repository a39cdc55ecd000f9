package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortDocument(t *testing.T) {
	docs := []Document{{
		Path: "kb/walking.md",
		Text: "# Walking\n\nA daily walk is the easiest habit to keep.",
	}}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	require.Len(t, chunks, 1)
	assert.Equal(t, "kb/walking.md", chunks[0].SourcePath)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "Walking\n"))
	assert.Contains(t, chunks[0].Text, "daily walk")
}

func TestChunk_HardCapBoundsEveryChunk(t *testing.T) {
	long := strings.Repeat("This sentence fills space in the document. ", 200)
	docs := []Document{{Path: "kb/long.md", Text: "# Long\n\n" + long}}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), DefaultMaxChunkHard)
	}
}

func TestChunk_HeaderFromHeadings(t *testing.T) {
	docs := []Document{{
		Path: "kb/protein.md",
		Text: "# Nutrition Basics\n\n## Protein\n\nProtein rebuilds muscle.",
	}}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	require.NotEmpty(t, chunks)
	firstLine := strings.SplitN(chunks[0].Text, "\n", 2)[0]
	assert.Contains(t, firstLine, "Nutrition Basics")
	assert.Contains(t, firstLine, "Protein")
}

func TestChunk_HeaderFallsBackToFilename(t *testing.T) {
	docs := []Document{{
		Path: "kb/recovery.txt",
		Text: "Sleep is where muscle gets built.",
	}}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	require.Len(t, chunks, 1)
	assert.True(t, strings.HasPrefix(chunks[0].Text, "recovery\n"))
}

func TestChunk_HardCapNeverSplitsRunes(t *testing.T) {
	long := strings.Repeat("Héllo wörld — å steady walk büilds the base. ", 120)
	docs := []Document{{Path: "kb/unicode.md", Text: "# Träning — Basics\n\n" + long}}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), DefaultMaxChunkHard)
		assert.True(t, utf8.ValidString(ch.Text))
	}
}

func TestChunk_DeduplicatesRepeatedContent(t *testing.T) {
	text := "# Tips\n\nDrink water with every meal."
	docs := []Document{
		{Path: "kb/a.md", Text: text},
		{Path: "kb/b.md", Text: text},
	}

	chunks := NewChunker(0, 0, 0).Chunk(docs)

	assert.Len(t, chunks, 1)
}

func TestChunk_Deterministic(t *testing.T) {
	long := strings.Repeat("A steady walk builds the base. ", 80)
	docs := []Document{
		{Path: "kb/one.md", Text: "# One\n\n" + long},
		{Path: "kb/two.md", Text: "# Two\n\nShort note."},
	}

	c := NewChunker(0, 0, 0)
	first := c.Chunk(docs)
	second := c.Chunk(docs)

	assert.Equal(t, first, second)
}

func TestChunk_EmptyInput(t *testing.T) {
	assert.Empty(t, NewChunker(0, 0, 0).Chunk(nil))
	assert.Empty(t, NewChunker(0, 0, 0).Chunk([]Document{{Path: "kb/blank.md", Text: "   \n\n  "}}))
}

func TestSplitSentencesFallback(t *testing.T) {
	sents := splitSentencesFallback("First thing. Second thing! Third?")
	assert.Equal(t, []string{"First thing.", "Second thing!", "Third?"}, sents)
}
