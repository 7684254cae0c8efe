package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tobot/internal/trainq"
	"github.com/cognicore/tobot/pkg/tobot"
	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/store/memstore"
)

func newBot(t *testing.T) *tobot.Tobot {
	t.Helper()
	comp, err := config.NewLoader(config.Default()).Load()
	require.NoError(t, err)
	bot, err := tobot.New(tobot.Options{Store: memstore.New(), Normalizer: comp.Normalizer})
	require.NoError(t, err)
	return bot
}

func runShell(t *testing.T, bot Brain, q LessonQueue, input ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(bot, q, 0.5, strings.NewReader(strings.Join(input, "\n")+"\n"), &out)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShellTrainAndTest(t *testing.T) {
	bot := newBot(t)
	out := runShell(t, bot, nil,
		"trainbot", "when is checkin", "Checkin is at 3pm",
		"trainbot", "what time can we check in", "Checkin is at 3pm",
		"testbot", "When can I check in?",
		"brainsize",
		"quit",
	)

	assert.Contains(t, out, "success")
	assert.Contains(t, out, "already in db")
	assert.Contains(t, out, "TOBOT Reply: Checkin is at 3pm (confidence: 0.7143 (db))")
	assert.Contains(t, out, "TOBOT: BRAIN(db) (sentences: 1, words: 1, associations: 1)")
	assert.True(t, strings.HasSuffix(out, "Sayonara..\n"))
}

func TestShellDumpAndHelp(t *testing.T) {
	bot := newBot(t)
	out := runShell(t, bot, nil, "braindump", "help", "nonsense")
	assert.Contains(t, out, "sentences empty")
	assert.Contains(t, out, "associations empty")
	assert.Contains(t, out, "braindump        dumps database")
	assert.Contains(t, out, "Sorry, I don't understand")

	out = runShell(t, bot, nil, "trainbot", "is there parking", "Street parking is free.", "braindump", "exit")
	assert.Contains(t, out, `(1, "Street parking is free.", 0)`)
	assert.Contains(t, out, `(1, "park")`)
}

func TestShellBrainsizeTextStats(t *testing.T) {
	comp, err := config.NewLoader(config.Default()).Load()
	require.NoError(t, err)

	var out bytes.Buffer
	sh := NewShell(newBot(t), nil, 0.5, strings.NewReader("brainsize\nquit\n"), &out).
		WithTextStats(comp.Stats())
	require.NoError(t, sh.Run(context.Background()))

	assert.Contains(t, out.String(), "phrases: 9 [amenity: 1, stay: 2], lemmas: 0, forms: 0)")
}

func TestShellTestbotNoResponse(t *testing.T) {
	out := runShell(t, newBot(t), nil, "testbot", "Do you rent kayaks?", "bye")
	assert.Contains(t, out, "no response found, need more training")
}

func TestShellReview(t *testing.T) {
	bot := newBot(t)
	q := trainq.New(filepath.Join(t.TempDir(), "lessons.jsonl"), nil)
	_, err := q.Append(trainq.Lesson{Question: "where is the hair dryer?", HostReply: "under the sink"})
	require.NoError(t, err)
	_, err = q.Append(trainq.Lesson{Question: "is there a crib?", Suggested: "no cribs, sorry", Confidence: 0.2})
	require.NoError(t, err)
	_, err = q.Append(trainq.Lesson{Question: "can we smoke?"})
	require.NoError(t, err)

	out := runShell(t, bot, q, "review", "h", "k", "d", "quit")
	assert.Contains(t, out, "Lesson 1/3")
	assert.Contains(t, out, "success")

	left, err := q.Load()
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "is there a crib?", left[0].Question)

	res, err := bot.Respond(context.Background(), "where is the hair dryer?")
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, "under the sink", res.Text)
}

func TestShellReviewEmpty(t *testing.T) {
	q := trainq.New(filepath.Join(t.TempDir(), "lessons.jsonl"), nil)
	out := runShell(t, newBot(t), q, "review")
	assert.Contains(t, out, "no lessons to review")

	out = runShell(t, newBot(t), nil, "review")
	assert.Contains(t, out, "no lesson queue configured")
}
