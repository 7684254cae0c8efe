package ingest

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/cognicore/tobot/pkg/tobot/lexicon"
	"github.com/cognicore/tobot/pkg/tobot/stoplist"
)

// DefaultDropFrequent is how many of the most frequent raw tokens Bag drops.
const DefaultDropFrequent = 2

// Bag maps normalized words to their occurrence count.
type Bag map[string]int

// WeightedLength is Σ count(word) * length(word), length in runes.
func (b Bag) WeightedLength() int {
	total := 0
	for w, n := range b {
		total += n * utf8.RuneCountInString(w)
	}
	return total
}

// Weights returns sqrt(count/WeightedLength) per word. An empty bag has no weights.
func (b Bag) Weights() map[string]float64 {
	total := b.WeightedLength()
	if total == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(b))
	for w, n := range b {
		out[w] = math.Sqrt(float64(n) / float64(total))
	}
	return out
}

// Words returns the bag's words in sorted order.
func (b Bag) Words() []string {
	words := make([]string, 0, len(b))
	for w := range b {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Normalizer turns raw message text into a bag of base-form words:
// text → tokens → phrase merge → drop most frequent → stopwords → strip punctuation → lemma
type Normalizer struct {
	tokenizer    *Tokenizer
	parser       *MultiTokenParser
	stops        *stoplist.Manager
	lexicon      *lexicon.Lexicon
	dropFrequent int
}

// NewNormalizer creates a normalizer. Nil components fall back to an empty
// phrase dictionary, the default English stoplist and a stemming lexicon.
func NewNormalizer(parser *MultiTokenParser, stops *stoplist.Manager, lex *lexicon.Lexicon) *Normalizer {
	if parser == nil {
		parser = NewMultiTokenParser(nil)
	}
	if stops == nil {
		stops = stoplist.NewEnglish()
	}
	if lex == nil {
		lex = lexicon.New()
	}
	return &Normalizer{
		tokenizer:    NewTokenizer(),
		parser:       parser,
		stops:        stops,
		lexicon:      lex,
		dropFrequent: DefaultDropFrequent,
	}
}

// SetDropFrequent sets how many most-frequent tokens Bag removes.
func (n *Normalizer) SetDropFrequent(k int) {
	if k < 0 {
		k = 0
	}
	n.dropFrequent = k
}

// Bag normalizes text into word counts. An empty bag means the text
// carried no usable signal.
func (n *Normalizer) Bag(text string) Bag {
	tokens := n.parser.Parse(n.tokenizer.Tokens(text))
	tokens = dropMostFrequent(tokens, n.dropFrequent)

	bag := make(Bag)
	for _, tok := range tokens {
		if n.stops.IsStop(tok) {
			continue
		}
		tok = StripPunct(tok)
		if tok == "" {
			continue
		}
		bag[n.lexicon.Lemma(tok)]++
	}
	return bag
}

// Terms returns the lemmatized tokens of text in order, skipping tokens in
// stops (checked on the surface form). stops may be nil.
func (n *Normalizer) Terms(text string, stops *stoplist.Manager) []string {
	tokens := n.parser.Parse(n.tokenizer.Tokens(text))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = StripPunct(tok)
		if tok == "" {
			continue
		}
		if stops != nil && stops.IsStop(tok) {
			continue
		}
		terms = append(terms, n.lexicon.Lemma(tok))
	}
	return terms
}

// dropMostFrequent removes the first occurrence of each of the k most
// frequent tokens. Ties go to the token seen first.
func dropMostFrequent(tokens []string, k int) []string {
	if k <= 0 || len(tokens) == 0 {
		return tokens
	}

	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if k > len(order) {
		k = len(order)
	}

	drop := make(map[string]bool, k)
	for _, tok := range order[:k] {
		drop[tok] = true
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if drop[tok] {
			delete(drop, tok)
			continue
		}
		out = append(out, tok)
	}
	return out
}
