package knowledge

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"

	"github.com/JoeyRudd/ai-fitness-coach/pkg/utils"
)

const (
	DefaultChunkSize    = 900
	DefaultChunkOverlap = 150
	DefaultMaxChunkHard = 1200

	dedupePrefixLen = 400
)

// Chunk is the retrieval unit: a bounded passage of a source document,
// prefixed with a synthesized heading for citation.
type Chunk struct {
	SourcePath string
	Text       string
	Index      int
}

type Chunker struct {
	chunkSize    int
	chunkOverlap int
	maxChunkHard int
}

func NewChunker(size, overlap, hardCap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}
	if hardCap <= 0 {
		hardCap = DefaultMaxChunkHard
	}
	return &Chunker{chunkSize: size, chunkOverlap: overlap, maxChunkHard: hardCap}
}

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// Chunk splits documents into overlapping size-bounded passages. Output
// ordering is deterministic for identical input; near-duplicates (same
// leading 400 chars) are dropped keeping the first occurrence.
func (c *Chunker) Chunk(docs []Document) []Chunk {
	var chunks []Chunk
	seen := make(map[string]bool)

	for _, doc := range docs {
		header := synthesizeHeader(doc)
		for _, body := range c.chunkText(doc.Text) {
			text := utils.Truncate(header+"\n"+body, c.maxChunkHard)
			key := utils.HashString(utils.Truncate(text, dedupePrefixLen))
			if seen[key] {
				continue
			}
			seen[key] = true
			chunks = append(chunks, Chunk{
				SourcePath: doc.Path,
				Text:       text,
				Index:      len(chunks),
			})
		}
	}
	return chunks
}

// chunkText produces size-bounded parts of a document body, carrying the
// trailing overlap of each part into the next for cross-chunk continuity.
func (c *Chunker) chunkText(text string) []string {
	var parts []string
	for _, para := range blankLineRe.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.chunkSize {
			parts = append(parts, para)
			continue
		}
		parts = append(parts, c.packSentences(splitSentences(para))...)
	}

	var out []string
	var buf strings.Builder
	for _, part := range parts {
		if buf.Len() > 0 && buf.Len()+1+len(part) > c.chunkSize {
			emitted := buf.String()
			out = append(out, emitted)
			buf.Reset()
			if len(emitted) > c.chunkOverlap {
				buf.WriteString(emitted[len(emitted)-c.chunkOverlap:])
				buf.WriteString("\n")
			}
		}
		if buf.Len() > 0 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteString("\n")
		}
		buf.WriteString(part)
	}
	if strings.TrimSpace(buf.String()) != "" {
		out = append(out, buf.String())
	}
	return out
}

// packSentences greedily packs sentences into buffers bounded by chunkSize.
func (c *Chunker) packSentences(sentences []string) []string {
	var out []string
	var buf strings.Builder
	for _, sent := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(sent) > c.chunkSize {
			out = append(out, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(sent)
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err == nil {
		sents := doc.Sentences()
		out := make([]string, 0, len(sents))
		for _, s := range sents {
			if t := strings.TrimSpace(s.Text); t != "" {
				out = append(out, t)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return splitSentencesFallback(text)
}

// splitSentencesFallback breaks on ./!/? followed by whitespace and an
// upper-case letter.
func splitSentencesFallback(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		if ch != '.' && ch != '!' && ch != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j > i+1 && j < len(runes) && unicode.IsUpper(runes[j]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = j
			i = j - 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// synthesizeHeader builds the citation heading: first H1 (or filename stem)
// plus first H2 when present.
func synthesizeHeader(doc Document) string {
	title := ""
	subtitle := ""
	for _, line := range strings.Split(doc.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if title == "" && strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			continue
		}
		if subtitle == "" && strings.HasPrefix(trimmed, "## ") {
			subtitle = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
		}
		if title != "" && subtitle != "" {
			break
		}
	}
	if title == "" {
		base := filepath.Base(doc.Path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if subtitle != "" {
		return title + " — " + subtitle
	}
	return title
}
