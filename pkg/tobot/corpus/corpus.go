// Package corpus scores a message against a fixed body of text by TF-IDF
// cosine similarity.
//
// Documents are the corpus sentences plus the query itself. Term weights are
// raw counts times the smoothed idf, each row normalized to unit length.
package corpus

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/stoplist"
)

// Analyzer turns text into ordered terms, skipping terms in stops.
type Analyzer interface {
	Terms(text string, stops *stoplist.Manager) []string
}

// SelfExclusion selects how the query's own row is kept out of the result.
type SelfExclusion string

const (
	// ExcludeIndex skips the query's row by position.
	ExcludeIndex SelfExclusion = "index"
	// ExcludeRank takes the second-highest score over every row, query included.
	ExcludeRank SelfExclusion = "rank"
)

// Options configure a Corpus.
type Options struct {
	SelfExclusion SelfExclusion
	// Stops defaults to stoplist.ExtendedEnglish.
	Stops *stoplist.Manager
}

type document struct {
	text   string
	counts map[string]int
}

// Corpus is an immutable set of sentences. Lookups never modify it and may
// run concurrently.
type Corpus struct {
	docs     []document
	freq     *docFreq
	words    int
	analyzer Analyzer
	stops    *stoplist.Manager
	mode     SelfExclusion
}

// New builds a corpus from sentences.
func New(sentences []string, analyzer Analyzer, opts Options) *Corpus {
	if analyzer == nil {
		analyzer = ingest.NewNormalizer(nil, nil, nil)
	}
	if opts.Stops == nil {
		opts.Stops = stoplist.NewManager(stoplist.ExtendedEnglish)
	}
	if opts.SelfExclusion == "" {
		opts.SelfExclusion = ExcludeIndex
	}

	c := &Corpus{
		docs:     make([]document, 0, len(sentences)),
		freq:     newDocFreq(),
		analyzer: analyzer,
		stops:    opts.Stops,
		mode:     opts.SelfExclusion,
	}
	for _, s := range sentences {
		counts := c.termCounts(s)
		c.docs = append(c.docs, document{text: s, counts: counts})
		c.freq.addDocument(counts)
		c.words += len(strings.Fields(s))
	}
	return c
}

// Load reads a text file, lowercases it and splits it into sentences.
func Load(path string, analyzer Analyzer, opts Options) (*Corpus, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return New(ingest.SplitSentences(strings.ToLower(string(raw))), analyzer, opts), nil
}

// Len returns the number of sentences.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// WordCount returns the number of whitespace separated words in the corpus.
func (c *Corpus) WordCount() int {
	return c.words
}

// Vocabulary returns the number of distinct analyzed terms.
func (c *Corpus) Vocabulary() int {
	return c.freq.uniqueTerms()
}

func (c *Corpus) termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, t := range c.analyzer.Terms(text, c.stops) {
		counts[t]++
	}
	return counts
}

// Lookup returns the corpus sentence most similar to query.
func (c *Corpus) Lookup(query string) answer.Candidate {
	q := c.termCounts(query)
	if len(q) == 0 {
		return answer.Miss(answer.NoSignal, answer.SourceCorpus)
	}

	// The query is one more document: it adds to n, and to df for its own terms.
	idf := func(term string) float64 {
		extraDF := int64(0)
		if _, ok := q[term]; ok {
			extraDF = 1
		}
		return c.freq.idf(term, 1, extraDF)
	}

	qvec := weigh(q, idf)
	scores := make([]float64, len(c.docs))
	for i, d := range c.docs {
		scores[i] = cosine(qvec, weigh(d.counts, idf))
	}

	best, score := c.pick(scores)
	if best < 0 || score <= 0 {
		return answer.Miss(answer.NoMatch, answer.SourceCorpus)
	}
	return answer.Hit(c.docs[best].text, score, answer.SourceCorpus)
}

func (c *Corpus) pick(scores []float64) (int, float64) {
	if c.mode == ExcludeRank {
		return pickSecond(scores)
	}
	best, score := -1, 0.0
	for i, s := range scores {
		if s > score {
			best, score = i, s
		}
	}
	return best, score
}

// pickSecond ranks every row including the query's own (which scores 1)
// and returns the runner-up.
func pickSecond(scores []float64) (int, float64) {
	if len(scores) == 0 {
		return -1, 0
	}
	idx := make([]int, len(scores)+1)
	for i := range idx {
		idx[i] = i
	}
	score := func(i int) float64 {
		if i == len(scores) {
			return 1
		}
		return scores[i]
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return score(idx[a]) > score(idx[b])
	})
	if idx[1] == len(scores) {
		// a corpus row tied with the query's own
		return idx[0], score(idx[0])
	}
	return idx[1], score(idx[1])
}

// weigh returns the unit length tf·idf vector of counts.
func weigh(counts map[string]int, idf func(string) float64) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	var norm float64
	for t, n := range counts {
		w := float64(n) * idf(t)
		vec[t] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for t := range vec {
		vec[t] /= norm
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for t, w := range a {
		dot += w * b[t]
	}
	return dot
}
