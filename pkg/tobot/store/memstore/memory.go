package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/tobot/pkg/tobot/internalerr"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu           sync.RWMutex
	words        []store.WordRow
	wordIndex    map[string]int64
	sentences    []store.SentenceRow
	sentIndex    map[string]int64
	associations []store.AssociationRow
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		wordIndex: make(map[string]int64),
		sentIndex: make(map[string]int64),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// HasSentence reports whether the sentence is stored.
func (s *Store) HasSentence(ctx context.Context, sentence string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sentIndex[sentence]
	return ok, nil
}

// KnownWords returns the stored subset of words, sorted.
func (s *Store) KnownWords(ctx context.Context, words []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var known []string
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := s.wordIndex[w]; ok {
			known = append(known, w)
		}
	}
	sort.Strings(known)
	return known, nil
}

// EdgesForWords returns associations of the words ordered by sentence id.
func (s *Store) EdgesForWords(ctx context.Context, words []string) ([]store.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[int64]string)
	for _, w := range words {
		if id, ok := s.wordIndex[w]; ok {
			byID[id] = w
		}
	}

	var edges []store.Edge
	for _, a := range s.associations {
		w, ok := byID[a.WordID]
		if !ok {
			continue
		}
		edges = append(edges, store.Edge{
			Word:       w,
			SentenceID: a.SentenceID,
			Sentence:   s.sentences[a.SentenceID-1].Sentence,
			Weight:     a.Weight,
		})
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].SentenceID < edges[j].SentenceID
	})
	return edges, nil
}

// InsertTraining stores the sentence and its associations under one lock.
func (s *Store) InsertTraining(ctx context.Context, t store.Training) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sentIndex[t.Sentence]; ok {
		return id, internalerr.ErrDuplicate
	}

	sentenceID := int64(len(s.sentences) + 1)
	s.sentences = append(s.sentences, store.SentenceRow{ID: sentenceID, Sentence: t.Sentence})
	s.sentIndex[t.Sentence] = sentenceID

	for _, ww := range t.Words {
		wordID, ok := s.wordIndex[ww.Word]
		if !ok {
			wordID = int64(len(s.words) + 1)
			s.words = append(s.words, store.WordRow{ID: wordID, Word: ww.Word})
			s.wordIndex[ww.Word] = wordID
		}
		s.associations = append(s.associations, store.AssociationRow{
			WordID:     wordID,
			SentenceID: sentenceID,
			Weight:     ww.Weight,
		})
	}
	return sentenceID, nil
}

// AddAssociation appends a raw edge, bypassing training. Used to exercise
// duplicate-edge handling.
func (s *Store) AddAssociation(wordID, sentenceID int64, weight float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.associations = append(s.associations, store.AssociationRow{WordID: wordID, SentenceID: sentenceID, Weight: weight})
}

// Size implements store.Store.
func (s *Store) Size(ctx context.Context) (store.Size, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Size{
		Sentences:    int64(len(s.sentences)),
		Words:        int64(len(s.words)),
		Associations: int64(len(s.associations)),
	}, nil
}

// Dump implements store.Store.
func (s *Store) Dump(ctx context.Context) (store.Dump, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Dump{
		Sentences:    append([]store.SentenceRow(nil), s.sentences...),
		Words:        append([]store.WordRow(nil), s.words...),
		Associations: append([]store.AssociationRow(nil), s.associations...),
	}, nil
}

var _ store.Store = (*Store)(nil)
