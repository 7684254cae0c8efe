package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cognicore/tobot/pkg/tobot/config"
)

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "brain.sqlite")
	cfg.Corpus.Path = filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(cfg.Corpus.Path, []byte("Checkout is at 11am. The wifi password is on the fridge."), 0o644))

	e, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer e.Close()

	sentences, _ := e.Bot.CorpusSize()
	assert.Equal(t, 2, sentences)
	assert.True(t, e.Classifier.IsQuestion("where is the wifi password?"))

	res, err := e.Bot.Respond(context.Background(), "what is the wifi password?")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "the wifi password is on the fridge.", res.Text)
}

func TestBuildWithoutCorpus(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(dir, "brain.sqlite")
	cfg.Corpus.Path = filepath.Join(dir, "missing.txt")

	e, err := Build(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer e.Close()

	sentences, words := e.Bot.CorpusSize()
	assert.Zero(t, sentences)
	assert.Zero(t, words)
}

func TestBuildBadResource(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "brain.sqlite")
	cfg.Corpus.Path = ""
	cfg.Text.DictPath = filepath.Join(t.TempDir(), "missing.dict")

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
