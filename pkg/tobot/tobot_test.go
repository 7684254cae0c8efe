package tobot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/brain"
	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/corpus"
	"github.com/cognicore/tobot/pkg/tobot/store/memstore"
	"github.com/cognicore/tobot/pkg/tobot/store/sqlite"
)

func newTobot(t *testing.T, sentences []string) *Tobot {
	t.Helper()
	cfg := config.Default()
	comp, err := config.NewLoader(cfg).Load()
	require.NoError(t, err)

	var c *corpus.Corpus
	if sentences != nil {
		c = corpus.New(sentences, comp.Normalizer, corpus.Options{})
	}
	bot, err := New(Options{
		Store:            memstore.New(),
		Normalizer:       comp.Normalizer,
		Corpus:           c,
		WeightMultiplier: cfg.Lookup.WeightMultiplier,
		Logger:           zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { bot.Close() })
	return bot
}

func TestTrainThenRespondCheckin(t *testing.T) {
	ctx := context.Background()
	bot := newTobot(t, nil)

	out, err := bot.Train(ctx, "when is checkin", "Checkin is at 3pm")
	require.NoError(t, err)
	require.Equal(t, brain.TrainSuccess, out)

	res, err := bot.Respond(ctx, "When can I check in?")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Checkin is at 3pm", res.Text)
	assert.Equal(t, answer.SourceDB, res.Source)
	assert.Greater(t, res.Confidence, config.Default().Lookup.ConfidenceRequired)
}

func TestRespondPrefersStrongerCorpusMatch(t *testing.T) {
	ctx := context.Background()
	bot := newTobot(t, []string{
		"the wifi password is written on the fridge door.",
		"parking is free on the street after 6pm.",
	})

	res, err := bot.Respond(ctx, "the wifi password is written on the fridge door.")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, answer.SourceCorpus, res.Source)
	assert.Equal(t, "the wifi password is written on the fridge door.", res.Text)
}

func TestRespondFormatsMultilineAnswer(t *testing.T) {
	ctx := context.Background()
	bot := newTobot(t, nil)

	_, err := bot.Train(ctx, "is there parking", "Hi!\nParking is free\non the street.")
	require.NoError(t, err)

	res, err := bot.Respond(ctx, "is there parking")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Parking is free on the street.", res.Text)
}

func TestRespondNothing(t *testing.T) {
	ctx := context.Background()
	bot := newTobot(t, []string{"parking is free on the street after 6pm."})

	res, err := bot.Respond(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, answer.NoSignal, res.Status)

	res, err = bot.Respond(ctx, "do you rent kayaks")
	require.NoError(t, err)
	assert.Equal(t, answer.NoMatch, res.Status)
}

func TestSizeAndDump(t *testing.T) {
	ctx := context.Background()
	bot := newTobot(t, []string{"one sentence here.", "another one."})

	_, err := bot.Train(ctx, "where are the extra towels", "In the closet.")
	require.NoError(t, err)

	size, err := bot.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size.Sentences)
	assert.Equal(t, size.Words, size.Associations)

	dump, err := bot.Dump(ctx)
	require.NoError(t, err)
	require.Len(t, dump.Sentences, 1)
	assert.Equal(t, "In the closet.", dump.Sentences[0].Sentence)

	sentences, words := bot.CorpusSize()
	assert.Equal(t, 2, sentences)
	assert.Equal(t, 5, words)
}

func TestRespondWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, t.TempDir()+"/brain.sqlite")
	require.NoError(t, err)

	bot, err := New(Options{Store: st})
	require.NoError(t, err)
	defer bot.Close()

	out, err := bot.Train(ctx, "is there a hair dryer in the bathroom", "Yes, under the sink.")
	require.NoError(t, err)
	require.Equal(t, brain.TrainSuccess, out)

	out, err = bot.Train(ctx, "do you have a hairdryer", "Yes, under the sink.")
	require.NoError(t, err)
	assert.Equal(t, brain.TrainDuplicate, out)

	res, err := bot.Respond(ctx, "is there a hair dryer in the bathroom")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "Yes, under the sink.", res.Text)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
