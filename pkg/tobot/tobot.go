// Package tobot answers guest messages from two sources: a fixed text
// corpus and a learned question → answer association store.
package tobot

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/brain"
	"github.com/cognicore/tobot/pkg/tobot/corpus"
	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/rank"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

// Tobot is the response engine facade
type Tobot struct {
	store  store.Store
	brain  *brain.Brain
	corpus *corpus.Corpus
	log    *zap.Logger
}

// Options configures a Tobot instance
type Options struct {
	Store      store.Store
	Normalizer *ingest.Normalizer
	// Corpus may be nil: only the association store is consulted then.
	Corpus           *corpus.Corpus
	WeightMultiplier float64
	Logger           *zap.Logger
}

// New creates a Tobot instance with the given dependencies
func New(opts Options) (*Tobot, error) {
	if opts.Store == nil {
		return nil, errors.New("tobot: store is required")
	}
	if opts.Normalizer == nil {
		opts.Normalizer = ingest.NewNormalizer(nil, nil, nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Tobot{
		store:  opts.Store,
		brain:  brain.New(opts.Store, opts.Normalizer, opts.WeightMultiplier),
		corpus: opts.Corpus,
		log:    opts.Logger,
	}, nil
}

// Close cleanly shuts down the store
func (t *Tobot) Close() error {
	return t.store.Close()
}

// Respond looks msg up in the corpus and the association store and returns
// the better candidate with its text formatted for sending.
func (t *Tobot) Respond(ctx context.Context, msg string) (answer.Candidate, error) {
	fromCorpus := answer.Miss(answer.NoSignal, answer.SourceCorpus)
	if t.corpus != nil {
		fromCorpus = t.corpus.Lookup(msg)
	}

	fromDB, err := t.brain.Lookup(ctx, msg)
	if err != nil {
		return answer.Candidate{}, fmt.Errorf("association lookup: %w", err)
	}

	b := rank.Explain(fromCorpus, fromDB)
	t.log.Debug("fused lookup",
		zap.Stringer("corpus_status", b.Corpus.Status),
		zap.Float64("corpus_confidence", b.Corpus.Confidence),
		zap.Stringer("db_status", b.DB.Status),
		zap.Float64("db_confidence", b.DB.Confidence),
		zap.String("chosen", string(b.Chosen.Source)),
	)

	res := b.Chosen
	if res.Found() {
		res.Text = answer.Format(res.Text)
	}
	return res, nil
}

// Train records a question → answer pair in the association store.
func (t *Tobot) Train(ctx context.Context, question, answerText string) (brain.TrainOutcome, error) {
	out, err := t.brain.Train(ctx, question, answerText)
	if err != nil {
		return out, err
	}
	t.log.Info("training", zap.String("outcome", out.String()))
	return out, nil
}

// Size reports the association store's row counts.
func (t *Tobot) Size(ctx context.Context) (store.Size, error) {
	return t.brain.Size(ctx)
}

// Dump returns the association store's content.
func (t *Tobot) Dump(ctx context.Context) (store.Dump, error) {
	return t.brain.Dump(ctx)
}

// CorpusSize reports the corpus sentence and word counts.
func (t *Tobot) CorpusSize() (sentences, words int) {
	if t.corpus == nil {
		return 0, 0
	}
	return t.corpus.Len(), t.corpus.WordCount()
}
