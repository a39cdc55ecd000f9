package retrieval

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeyRudd/ai-fitness-coach/internal/knowledge"
	"github.com/JoeyRudd/ai-fitness-coach/pkg/logger"
)

const (
	// DefaultTopK bounds how many passages feed the prompt builder.
	DefaultTopK = 4

	headerBoost = 1.12
	rrfK        = 60
)

var ErrNoChunks = errors.New("no chunks to index")

type State int

const (
	StateUnbuilt State = iota
	StateBuilding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return "unbuilt"
	}
}

// Result is one retrieved passage with its citation source (base filename).
type Result struct {
	Text   string
	Source string
	Score  float64
}

// Status is the introspection snapshot served on the root endpoint.
type Status struct {
	State   string `json:"state"`
	Backend string `json:"backend"`
	Chunks  int    `json:"chunks"`
}

// Index is the in-process sparse retrieval index. Build is guarded so
// concurrent callers never fit twice; a failed build reverts to unbuilt so a
// later call can retry. Retrieve never panics and never returns an error:
// any internal failure degrades to the keyword fallback or an empty slice.
type Index struct {
	mu     sync.Mutex
	state  State
	chunks []knowledge.Chunk
	tfidf  *tfidfModel
	bm25   *bm25Model
}

func NewIndex(chunks []knowledge.Chunk) *Index {
	return &Index{chunks: chunks}
}

// Build fits the tf-idf and BM25 models over the chunk texts. Safe for
// concurrent use; only the first caller does the work.
func (ix *Index) Build() error {
	ix.mu.Lock()
	if ix.state != StateUnbuilt {
		state := ix.state
		ix.mu.Unlock()
		if state == StateReady {
			return nil
		}
		return errors.New("index build already in progress")
	}
	if len(ix.chunks) == 0 {
		ix.mu.Unlock()
		return ErrNoChunks
	}
	ix.state = StateBuilding
	texts := make([]string, len(ix.chunks))
	for i, ch := range ix.chunks {
		texts[i] = ch.Text
	}
	ix.mu.Unlock()

	tfidf, bm25, err := fitModels(texts)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err != nil {
		ix.state = StateUnbuilt
		return err
	}
	ix.tfidf = tfidf
	ix.bm25 = bm25
	ix.state = StateReady
	logger.Info("Retrieval index built",
		zap.Int("chunks", len(ix.chunks)),
		zap.Int("vocabulary", len(tfidf.vocab)),
	)
	return nil
}

// fitModels isolates the panic guard: a malformed corpus degrades to an
// error instead of taking down the caller.
func fitModels(texts []string) (tfidf *tfidfModel, bm25 *bm25Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("index build panicked")
			logger.Error("Retrieval index build panicked", zap.Any("panic", r))
		}
	}()
	return fitTFIDF(texts), fitBM25(texts), nil
}

// Retrieve returns up to topK passages ranked by cosine similarity over the
// tf-idf vectors, with a small boost for chunks whose heading mentions a
// query term. Empty queries and empty corpora yield an empty slice.
func (ix *Index) Retrieve(query string, topK int) []Result {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Retrieval panicked", zap.Any("panic", r))
		}
	}()

	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if !ix.ensureBuilt() {
		// No fitted model: serve what the keyword scorer can find.
		return ix.keywordFallback(query, topK)
	}

	expanded := expandQuery(query)

	ix.mu.Lock()
	tfidf := ix.tfidf
	chunks := ix.chunks
	ix.mu.Unlock()

	qvec := tfidf.queryVector(expanded)
	if len(qvec) == 0 {
		return ix.keywordFallback(query, topK)
	}

	queryTerms := tokenRe.FindAllString(strings.ToLower(query), -1)
	hits := make([]scoredHit, 0, len(chunks))
	for i := range chunks {
		score := cosine(qvec, tfidf.vectors[i])
		if score <= 0 {
			continue
		}
		if headingMentions(chunks[i].Text, queryTerms) {
			score *= headerBoost
		}
		hits = append(hits, scoredHit{i, score})
	}
	if len(hits) == 0 {
		return ix.keywordFallback(query, topK)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].idx < hits[j].idx
	})

	return ix.collect(hits2idx(hits), scores(hits), topK)
}

// HybridRetrieve fuses BM25 and tf-idf rankings with reciprocal rank fusion.
// When both rankers come up empty it degrades to the keyword fallback.
func (ix *Index) HybridRetrieve(query string, topK int) []Result {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Hybrid retrieval panicked", zap.Any("panic", r))
		}
	}()

	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if !ix.ensureBuilt() {
		return ix.keywordFallback(query, topK)
	}

	expanded := expandQuery(query)

	ix.mu.Lock()
	tfidf := ix.tfidf
	bm25 := ix.bm25
	chunks := ix.chunks
	ix.mu.Unlock()

	fused := make(map[int]float64)
	for rank, idx := range bm25.rank(expanded) {
		fused[idx] += 1.0 / float64(rrfK+rank+1)
	}

	qvec := tfidf.queryVector(expanded)
	if len(qvec) > 0 {
		var cos []scoredHit
		for i := range chunks {
			if s := cosine(qvec, tfidf.vectors[i]); s > 0 {
				cos = append(cos, scoredHit{i, s})
			}
		}
		sort.SliceStable(cos, func(i, j int) bool {
			if cos[i].score != cos[j].score {
				return cos[i].score > cos[j].score
			}
			return cos[i].idx < cos[j].idx
		})
		for rank, h := range cos {
			fused[h.idx] += 1.0 / float64(rrfK+rank+1)
		}
	}

	if len(fused) == 0 {
		return ix.keywordFallback(query, topK)
	}

	idxs := make([]int, 0, len(fused))
	for idx := range fused {
		idxs = append(idxs, idx)
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		if fused[idxs[i]] != fused[idxs[j]] {
			return fused[idxs[i]] > fused[idxs[j]]
		}
		return idxs[i] < idxs[j]
	})
	scoreList := make([]float64, len(idxs))
	for i, idx := range idxs {
		scoreList[i] = fused[idx]
	}
	return ix.collect(idxs, scoreList, topK)
}

// keywordFallback counts substring occurrences of query words longer than
// two characters. It covers corpora too small or too odd for the models.
func (ix *Index) keywordFallback(query string, topK int) []Result {
	ix.mu.Lock()
	chunks := ix.chunks
	ix.mu.Unlock()

	var words []string
	for _, w := range tokenRe.FindAllString(strings.ToLower(query), -1) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil
	}

	var hits []scoredHit
	for i, ch := range chunks {
		lower := strings.ToLower(ch.Text)
		var count int
		for _, w := range words {
			count += strings.Count(lower, w)
		}
		if count > 0 {
			hits = append(hits, scoredHit{i, float64(count)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].idx < hits[j].idx
	})
	return ix.collect(hits2idx(hits), scores(hits), topK)
}

// collect materializes Results for the ranked chunk indices, skipping
// duplicate texts, up to topK.
func (ix *Index) collect(idxs []int, scoreList []float64, topK int) []Result {
	ix.mu.Lock()
	chunks := ix.chunks
	ix.mu.Unlock()

	var out []Result
	seen := make(map[string]bool)
	for i, idx := range idxs {
		if len(out) >= topK {
			break
		}
		ch := chunks[idx]
		if seen[ch.Text] {
			continue
		}
		seen[ch.Text] = true
		out = append(out, Result{
			Text:   ch.Text,
			Source: filepath.Base(ch.SourcePath),
			Score:  scoreList[i],
		})
	}
	return out
}

func (ix *Index) ensureBuilt() bool {
	ix.mu.Lock()
	state := ix.state
	empty := len(ix.chunks) == 0
	ix.mu.Unlock()

	if state == StateReady {
		return true
	}
	if empty {
		return false
	}
	if err := ix.Build(); err != nil {
		logger.Warn("Lazy index build failed", zap.Error(err))
		ix.mu.Lock()
		ready := ix.state == StateReady
		ix.mu.Unlock()
		return ready
	}
	return true
}

// Status reports the index state for the root endpoint.
func (ix *Index) Status() Status {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	backend := "none"
	if ix.state == StateReady {
		backend = "tfidf"
	}
	return Status{
		State:   ix.state.String(),
		Backend: backend,
		Chunks:  len(ix.chunks),
	}
}

// headingMentions reports whether any query term appears in the chunk's
// first line (the synthesized heading).
func headingMentions(text string, terms []string) bool {
	firstLine := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		firstLine = text[:i]
	}
	firstLine = strings.ToLower(firstLine)
	for _, t := range terms {
		if strings.Contains(firstLine, t) {
			return true
		}
	}
	return false
}

type scoredHit struct {
	idx   int
	score float64
}

func hits2idx(hits []scoredHit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.idx
	}
	return out
}

func scores(hits []scoredHit) []float64 {
	out := make([]float64, len(hits))
	for i, h := range hits {
		out[i] = h.score
	}
	return out
}
