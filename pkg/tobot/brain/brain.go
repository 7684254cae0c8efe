// Package brain scores and learns question → answer associations.
//
// Training splits a question into a word bag and links each word to the
// answer with weight sqrt(count/Σ count·len). Lookup weights the incoming
// message the same way and sums query_weight·edge_weight per stored answer.
package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/internalerr"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

// DefaultWeightMultiplier scales the winning association sum into a confidence.
const DefaultWeightMultiplier = 5.0

// TrainOutcome reports what Train did.
type TrainOutcome int

const (
	TrainSuccess TrainOutcome = iota
	// TrainDuplicate means the answer text was already stored.
	TrainDuplicate
	// TrainNoSignal means the question normalized to nothing.
	TrainNoSignal
)

func (o TrainOutcome) String() string {
	switch o {
	case TrainSuccess:
		return "success"
	case TrainDuplicate:
		return "already in db"
	case TrainNoSignal:
		return "no usable words in question"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Brain is the association store front end.
type Brain struct {
	store      store.Store
	normalizer *ingest.Normalizer
	multiplier float64
}

// New creates a Brain. A non-positive multiplier selects DefaultWeightMultiplier.
func New(st store.Store, n *ingest.Normalizer, multiplier float64) *Brain {
	if multiplier <= 0 {
		multiplier = DefaultWeightMultiplier
	}
	return &Brain{store: st, normalizer: n, multiplier: multiplier}
}

// Lookup finds the stored answer whose words best match msg.
func (b *Brain) Lookup(ctx context.Context, msg string) (answer.Candidate, error) {
	weights := b.normalizer.Bag(msg).Weights()
	if len(weights) == 0 {
		return answer.Miss(answer.NoSignal, answer.SourceDB), nil
	}

	words := make([]string, 0, len(weights))
	for w := range weights {
		words = append(words, w)
	}

	known, err := b.store.KnownWords(ctx, words)
	if err != nil {
		return answer.Candidate{}, fmt.Errorf("known words: %w", err)
	}
	if len(known) == 0 {
		return answer.Miss(answer.NoMatch, answer.SourceDB), nil
	}

	edges, err := b.store.EdgesForWords(ctx, known)
	if err != nil {
		return answer.Candidate{}, fmt.Errorf("edges: %w", err)
	}

	best, ok := bestSentence(edges, weights)
	if !ok {
		return answer.Miss(answer.NoMatch, answer.SourceDB), nil
	}
	return answer.Hit(best.text, best.sum*b.multiplier, answer.SourceDB), nil
}

type scored struct {
	id   int64
	text string
	sum  float64
}

// bestSentence sums query_weight·edge_weight per sentence, duplicate edges
// included, and returns the highest sum. Ties go to the lowest sentence id.
func bestSentence(edges []store.Edge, weights map[string]float64) (scored, bool) {
	sums := make(map[int64]*scored)
	for _, e := range edges {
		acc, ok := sums[e.SentenceID]
		if !ok {
			acc = &scored{id: e.SentenceID, text: e.Sentence}
			sums[e.SentenceID] = acc
		}
		acc.sum += weights[e.Word] * e.Weight
	}

	var best scored
	found := false
	for _, s := range sums {
		if s.sum <= 0 {
			continue
		}
		if !found || s.sum > best.sum || (s.sum == best.sum && s.id < best.id) {
			best = *s
			found = true
		}
	}
	return best, found
}

// Train links the words of question to answerText.
func (b *Brain) Train(ctx context.Context, question, answerText string) (TrainOutcome, error) {
	exists, err := b.store.HasSentence(ctx, answerText)
	if err != nil {
		return 0, fmt.Errorf("check sentence: %w", err)
	}
	if exists {
		return TrainDuplicate, nil
	}

	bag := b.normalizer.Bag(question)
	weights := bag.Weights()
	if len(weights) == 0 {
		return TrainNoSignal, nil
	}

	t := store.Training{Sentence: answerText}
	for _, w := range bag.Words() {
		t.Words = append(t.Words, store.WordWeight{Word: w, Weight: weights[w]})
	}

	if _, err := b.store.InsertTraining(ctx, t); err != nil {
		if errors.Is(err, internalerr.ErrDuplicate) {
			return TrainDuplicate, nil
		}
		return 0, fmt.Errorf("insert training: %w", err)
	}
	return TrainSuccess, nil
}

// Size returns the store's row counts.
func (b *Brain) Size(ctx context.Context) (store.Size, error) {
	return b.store.Size(ctx)
}

// Dump returns the store's content.
func (b *Brain) Dump(ctx context.Context) (store.Dump, error) {
	return b.store.Dump(ctx)
}
