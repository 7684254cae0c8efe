package ingest

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase word and punctuation tokens.
//
// Words are runs of letters and digits; an apostrophe or hyphen between two
// word runes stays inside the word ("what's", "check-in"). Every other
// non-space rune becomes a one-rune token, so "checkout?" yields
// ["checkout", "?"].
type Tokenizer struct{}

// NewTokenizer creates a tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokens splits text into lowercase tokens, punctuation included.
func (t *Tokenizer) Tokens(text string) []string {
	runes := []rune(strings.ToLower(text))
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			current.WriteRune(r)
		case isJoiner(r) && current.Len() > 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

// Words returns only the alphabetic tokens of text.
func (t *Tokenizer) Words(text string) []string {
	var words []string
	for _, tok := range t.Tokens(text) {
		if IsWord(tok) {
			words = append(words, tok)
		}
	}
	return words
}

// IsWord reports whether tok consists of letters (and inner apostrophes)
// with at least one letter.
func IsWord(tok string) bool {
	letters := 0
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '\'' || r == '’':
		default:
			return false
		}
	}
	return letters > 0
}

// StripPunct removes punctuation and symbol runes from a token.
func StripPunct(tok string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, tok)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// SplitSentences segments text into sentences. A sentence ends at a run of
// '.', '!' or '?' followed by whitespace (or the end of text), or at a blank
// line. Single newlines stay inside the sentence.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	var current strings.Builder

	emit := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			out = append(out, s)
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			emit()
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
			}
			continue
		}
		current.WriteRune(r)
		if !isTerminal(r) {
			continue
		}
		for i+1 < len(runes) && isTerminal(runes[i+1]) {
			i++
			current.WriteRune(runes[i])
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			emit()
		}
	}
	emit()

	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
