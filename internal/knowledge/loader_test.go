package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveRoot_FirstExistingWins(t *testing.T) {
	existing := t.TempDir()

	got := ResolveRoot([]string{"/nonexistent/kb", existing, t.TempDir()}, "fallback")
	assert.Equal(t, existing, got)
}

func TestResolveRoot_Fallback(t *testing.T) {
	got := ResolveRoot([]string{"/nonexistent/a", "/nonexistent/b"}, "fallback")
	assert.Equal(t, "fallback", got)
}

func TestLoad_OnlyMarkdownAndText(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "# Guide\n\nStart with walking.")
	writeFile(t, dir, "notes.txt", "Protein at every meal.")
	writeFile(t, dir, "image.png", "not text")
	writeFile(t, dir, "empty.md", "   ")

	docs := Load(dir)

	require.Len(t, docs, 2)
	paths := []string{docs[0].Path, docs[1].Path}
	assert.Contains(t, paths, filepath.Join(dir, "guide.md"))
	assert.Contains(t, paths, filepath.Join(dir, "notes.txt"))
}

func TestLoad_Recursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "deep.md", "# Deep\n\nContent.")

	docs := Load(dir)

	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Path, "deep.md")
}

func TestLoad_MissingRoot(t *testing.T) {
	assert.Empty(t, Load("/nonexistent/knowledge"))
}

func TestStripEmbeddedHTML(t *testing.T) {
	text := "<html><body><script>alert(1)</script><p>Squats build legs.</p></body></html>"

	cleaned := stripEmbeddedHTML(text)

	assert.Contains(t, cleaned, "Squats build legs.")
	assert.NotContains(t, cleaned, "alert(1)")
}

func TestStripEmbeddedHTML_PlainMarkdownUntouched(t *testing.T) {
	text := "# Plain\n\nNo markup here, just 2 < 3 notes."
	assert.Equal(t, text, stripEmbeddedHTML(text))
}
