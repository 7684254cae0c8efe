// Package app assembles the response engine from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cognicore/tobot/pkg/tobot"
	"github.com/cognicore/tobot/pkg/tobot/classify"
	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/corpus"
	"github.com/cognicore/tobot/pkg/tobot/store/sqlite"
)

// Engine is everything the binaries need besides the inbox.
type Engine struct {
	Bot        *tobot.Tobot
	Classifier *classify.Classifier
	Components *config.Components
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.Bot.Close()
}

// Build loads the text resources, the corpus and the association store.
// A missing corpus file is logged and the engine runs on the store alone.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	comp, err := config.NewLoader(cfg).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var c *corpus.Corpus
	if cfg.Corpus.Path != "" {
		c, err = corpus.Load(cfg.Corpus.Path, comp.Normalizer, corpus.Options{
			SelfExclusion: corpus.SelfExclusion(cfg.Corpus.SelfExclusion),
		})
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("corpus file not found, using the association store only", zap.String("path", cfg.Corpus.Path))
			c = nil
		case err != nil:
			return nil, err
		default:
			logger.Info("loaded corpus",
				zap.String("path", cfg.Corpus.Path),
				zap.Int("sentences", c.Len()),
				zap.Int("words", c.WordCount()),
			)
		}
	}

	st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	bot, err := tobot.New(tobot.Options{
		Store:            st,
		Normalizer:       comp.Normalizer,
		Corpus:           c,
		WeightMultiplier: cfg.Lookup.WeightMultiplier,
		Logger:           logger.Named("engine"),
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Engine{
		Bot:        bot,
		Classifier: classify.New(comp.Phrases),
		Components: comp,
	}, nil
}

// NewLogger builds the production logger, at debug level when verbose.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
