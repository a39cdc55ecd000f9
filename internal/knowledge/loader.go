package knowledge

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

// Document is a raw knowledge-base file, immutable after load.
type Document struct {
	Path string
	Text string
}

// ResolveRoot returns the first existing directory from candidates, or
// fallback if none exist.
func ResolveRoot(candidates []string, fallback string) string {
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			return p
		}
	}
	return fallback
}

// Load recursively scans root for .md and .txt files. A missing or
// non-directory root yields an empty slice, not an error; unreadable or
// empty files are skipped with a warning. Safe to call repeatedly.
func Load(root string) []Document {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logger.Warn("Knowledge path does not exist or is not a directory", zap.String("path", root))
		return nil
	}

	var docs []Document
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Failed to walk knowledge path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read knowledge file", zap.String("path", path), zap.Error(err))
			return nil
		}
		text := stripEmbeddedHTML(string(data))
		if strings.TrimSpace(text) == "" {
			logger.Warn("Skipping empty knowledge file", zap.String("path", path))
			return nil
		}
		docs = append(docs, Document{Path: path, Text: text})
		return nil
	})
	if walkErr != nil {
		logger.Warn("Knowledge scan aborted", zap.Error(walkErr))
	}

	logger.Info("Knowledge base loaded", zap.String("path", root), zap.Int("documents", len(docs)))
	return docs
}

// stripEmbeddedHTML removes script/style/nav blocks that occasionally end up
// inside exported markdown. Plain markdown passes through untouched.
func stripEmbeddedHTML(text string) string {
	if !strings.Contains(text, "<script") && !strings.Contains(text, "<style") && !strings.Contains(text, "<iframe") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style, iframe, nav").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	cleaned := doc.Find("body").Text()
	if strings.TrimSpace(cleaned) == "" {
		return text
	}
	return cleaned
}
