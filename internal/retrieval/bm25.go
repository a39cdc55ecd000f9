package retrieval

import (
	"math"
	"sort"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Model scores documents with Okapi BM25 over the same token stream as
// the tf-idf model.
type bm25Model struct {
	docTermFreqs []map[string]int
	docLengths   []int
	avgDocLength float64
	idf          map[string]float64
}

func fitBM25(texts []string) *bm25Model {
	n := len(texts)
	m := &bm25Model{
		docTermFreqs: make([]map[string]int, n),
		docLengths:   make([]int, n),
		idf:          make(map[string]float64),
	}

	df := make(map[string]int)
	var totalLen int
	for i, text := range texts {
		toks := tokenize(text)
		freqs := make(map[string]int, len(toks))
		for _, t := range toks {
			freqs[t]++
		}
		m.docTermFreqs[i] = freqs
		m.docLengths[i] = len(toks)
		totalLen += len(toks)
		for t := range freqs {
			df[t]++
		}
	}
	if n > 0 {
		m.avgDocLength = float64(totalLen) / float64(n)
	}
	for t, d := range df {
		m.idf[t] = math.Log(1 + (float64(n)-float64(d)+0.5)/(float64(d)+0.5))
	}
	return m
}

func (m *bm25Model) score(queryTokens []string, docIdx int) float64 {
	freqs := m.docTermFreqs[docIdx]
	docLen := float64(m.docLengths[docIdx])
	var score float64
	for _, t := range queryTokens {
		tf := float64(freqs[t])
		if tf == 0 {
			continue
		}
		idf := m.idf[t]
		norm := tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*docLen/m.avgDocLength))
		score += idf * norm
	}
	return score
}

// rank returns document indices ordered by descending BM25 score, zero-score
// documents excluded.
func (m *bm25Model) rank(query string) []int {
	queryTokens := tokenize(query)
	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	for i := range m.docTermFreqs {
		if s := m.score(queryTokens, i); s > 0 {
			hits = append(hits, scored{i, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].idx < hits[j].idx
	})
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.idx
	}
	return out
}
