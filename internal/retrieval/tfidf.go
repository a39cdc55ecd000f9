package retrieval

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	maxVocabSize  = 5000
	maxDocFreqPct = 0.9
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases and extracts alphanumeric runs, then appends bigrams
// so short phrases like "daily burn" survive as single features.
func tokenize(text string) []string {
	unigrams := tokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(unigrams)*2)
	tokens = append(tokens, unigrams...)
	for i := 0; i+1 < len(unigrams); i++ {
		tokens = append(tokens, unigrams[i]+" "+unigrams[i+1])
	}
	return tokens
}

// tfidfModel holds a fitted vocabulary and idf weights plus the L2-normalized
// document vectors. Immutable once fitted.
type tfidfModel struct {
	vocab   map[string]int
	idf     []float64
	vectors []map[int]float64
}

// fitTFIDF builds the model over the chunk texts: vocabulary capped at
// maxVocabSize terms by collection frequency, terms present in more than 90%
// of documents dropped, sublinear tf, smoothed idf.
func fitTFIDF(texts []string) *tfidfModel {
	n := len(texts)
	docTokens := make([][]string, n)
	df := make(map[string]int)
	cf := make(map[string]int)
	for i, text := range texts {
		toks := tokenize(text)
		docTokens[i] = toks
		seen := make(map[string]bool)
		for _, t := range toks {
			cf[t]++
			if !seen[t] {
				seen[t] = true
				df[t]++
			}
		}
	}

	maxDF := int(maxDocFreqPct * float64(n))
	type termFreq struct {
		term string
		freq int
	}
	candidates := make([]termFreq, 0, len(cf))
	for term, freq := range cf {
		if n > 1 && df[term] > maxDF {
			continue
		}
		candidates = append(candidates, termFreq{term, freq})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].freq != candidates[j].freq {
			return candidates[i].freq > candidates[j].freq
		}
		return candidates[i].term < candidates[j].term
	})
	if len(candidates) > maxVocabSize {
		candidates = candidates[:maxVocabSize]
	}

	m := &tfidfModel{vocab: make(map[string]int, len(candidates))}
	m.idf = make([]float64, len(candidates))
	for idx, c := range candidates {
		m.vocab[c.term] = idx
		m.idf[idx] = math.Log(float64(1+n)/float64(1+df[c.term])) + 1
	}

	m.vectors = make([]map[int]float64, n)
	for i, toks := range docTokens {
		m.vectors[i] = m.vectorize(toks)
	}
	return m
}

// vectorize maps tokens to a sparse L2-normalized tf-idf vector.
func (m *tfidfModel) vectorize(tokens []string) map[int]float64 {
	counts := make(map[int]int)
	for _, t := range tokens {
		if idx, ok := m.vocab[t]; ok {
			counts[idx]++
		}
	}
	vec := make(map[int]float64, len(counts))
	var norm float64
	for idx, c := range counts {
		w := (1 + math.Log(float64(c))) * m.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (m *tfidfModel) queryVector(query string) map[int]float64 {
	return m.vectorize(tokenize(query))
}

// cosine of two sparse unit vectors reduces to a dot product.
func cosine(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		dot += w * b[idx]
	}
	return dot
}
