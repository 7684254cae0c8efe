package corpus

import "math"

// docFreq maintains document frequencies for the TF-IDF weighting.
type docFreq struct {
	n  int64            // total number of documents
	df map[string]int64 // documents containing each term
}

func newDocFreq() *docFreq {
	return &docFreq{df: make(map[string]int64)}
}

// addDocument counts each distinct term of a document once.
func (d *docFreq) addDocument(counts map[string]int) {
	d.n++
	for t := range counts {
		d.df[t]++
	}
}

// idf is the smoothed inverse document frequency
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// extra is added to both n and df(t) for a document that is not stored,
// so a lookup can count the query without touching the shared table.
func (d *docFreq) idf(term string, extraN, extraDF int64) float64 {
	n := float64(d.n + extraN)
	df := float64(d.df[term] + extraDF)
	return math.Log((1+n)/(1+df)) + 1
}

func (d *docFreq) uniqueTerms() int {
	return len(d.df)
}
