package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensPunctuation(t *testing.T) {
	tok := NewTokenizer()
	assert.Equal(t, []string{"what", "time", "is", "checkout", "?"}, tok.Tokens("What time is checkout?"))
}

func TestTokensJoiners(t *testing.T) {
	tok := NewTokenizer()
	got := tok.Tokens("What's the check-in time - 3pm?")
	assert.Equal(t, []string{"what's", "the", "check-in", "time", "-", "3pm", "?"}, got)
}

func TestTokensEmpty(t *testing.T) {
	assert.Empty(t, NewTokenizer().Tokens("   "))
}

func TestWordsAlphabeticOnly(t *testing.T) {
	got := NewTokenizer().Words("Thanks!! 100 times :)")
	assert.Equal(t, []string{"thanks", "times"}, got)
}

func TestStripPunct(t *testing.T) {
	assert.Equal(t, "whats", StripPunct("what's"))
	assert.Equal(t, "checkin", StripPunct("check-in"))
	assert.Equal(t, "", StripPunct("?"))
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Hi there! Is parking free? We arrive at 5.30 tomorrow...\n\nThanks")
	assert.Equal(t, []string{
		"Hi there!",
		"Is parking free?",
		"We arrive at 5.30 tomorrow...",
		"Thanks",
	}, got)
}

func TestSplitSentencesKeepsSingleNewline(t *testing.T) {
	got := SplitSentences("welcome!\ncheckin is at 3pm. bye")
	assert.Equal(t, []string{"welcome!", "checkin is at 3pm.", "bye"}, got)

	got = SplitSentences("wifi\nthe password is on the fridge.")
	assert.Equal(t, []string{"wifi\nthe password is on the fridge."}, got)
}
