package store

import "context"

// Store persists the learned word → sentence association graph.
//
// Words, sentences and associations are append-only. Duplicate associations
// for the same (word, sentence) pair are allowed and returned as separate
// edges; callers sum them.
type Store interface {
	Close() error

	// HasSentence reports whether a response text is already stored.
	HasSentence(ctx context.Context, sentence string) (bool, error)

	// KnownWords returns the subset of words present in the store.
	KnownWords(ctx context.Context, words []string) ([]string, error)

	// EdgesForWords returns every association touching any of the words.
	EdgesForWords(ctx context.Context, words []string) ([]Edge, error)

	// InsertTraining stores a sentence and one association per word in a
	// single atomic step. It returns internalerr.ErrDuplicate, writing
	// nothing, when the sentence already exists.
	InsertTraining(ctx context.Context, t Training) (int64, error)

	Size(ctx context.Context) (Size, error)
	Dump(ctx context.Context) (Dump, error)
}

// Edge is one association joined with its word and sentence.
type Edge struct {
	Word       string
	SentenceID int64
	Sentence   string
	Weight     float64
}

// Training is a response sentence with the weighted words that lead to it.
type Training struct {
	Sentence string
	Words    []WordWeight
}

// WordWeight is a word with its association weight.
type WordWeight struct {
	Word   string
	Weight float64
}

// Size counts rows per relation.
type Size struct {
	Sentences    int64
	Words        int64
	Associations int64
}

// Dump is the full store content, ordered by id.
type Dump struct {
	Sentences    []SentenceRow
	Words        []WordRow
	Associations []AssociationRow
}

// SentenceRow is a stored response.
type SentenceRow struct {
	ID       int64
	Sentence string
	Used     int64
}

// WordRow is a stored word.
type WordRow struct {
	ID   int64
	Word string
}

// AssociationRow is a stored edge.
type AssociationRow struct {
	WordID     int64
	SentenceID int64
	Weight     float64
}
