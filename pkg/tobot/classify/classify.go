// Package classify holds the cheap gates applied to a guest message before
// any lookup: question detection, greeting and thanks matching.
package classify

import (
	"math/rand"
	"strings"

	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/stoplist"
)

// Reply is a canned response awaiting the guest name.
type Reply struct {
	Template string
}

// Render substitutes name into the template.
func (r Reply) Render(name string) string {
	return strings.ReplaceAll(r.Template, "{name}", name)
}

// Classifier matches messages against a phrase set. It holds no state
// besides its configuration.
type Classifier struct {
	phrases   Phrases
	questions map[string]struct{}
	greetings [][]string
	thanks    map[string]struct{}
	tokenizer *ingest.Tokenizer
	stops     *stoplist.Manager
	// Choose picks one of n replies. Defaults to math/rand.
	Choose func(n int) int
}

// New creates a classifier.
func New(p Phrases) *Classifier {
	c := &Classifier{
		phrases:   p,
		questions: toSet(p.QuestionWords),
		thanks:    toSet(p.Thanks),
		tokenizer: ingest.NewTokenizer(),
		stops:     stoplist.NewEnglish(),
		Choose:    rand.Intn,
	}
	for _, g := range p.Greetings {
		if words := c.cleanWords(g); len(words) > 0 {
			c.greetings = append(c.greetings, words)
		}
	}
	return c
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// IsQuestion reports whether any sentence of text ends with '?' or starts
// with an interrogative lead word.
func (c *Classifier) IsQuestion(text string) bool {
	text = strings.TrimSpace(strings.ReplaceAll(text, ".", ". "))
	for _, sent := range ingest.SplitSentences(text) {
		tokens := c.tokenizer.Tokens(sent)
		if len(tokens) == 0 {
			continue
		}
		if tokens[len(tokens)-1] == "?" {
			return true
		}
		if _, ok := c.questions[tokens[0]]; ok {
			return true
		}
	}
	return false
}

// Greeting matches a short message opening with a greeting phrase.
func (c *Classifier) Greeting(text string) (Reply, bool) {
	words := c.cleanWords(text)
	if len(words) == 0 || len(words) > c.phrases.GreetingMaxWords {
		return Reply{}, false
	}
	for _, g := range c.greetings {
		if hasPrefix(words, g) {
			return c.reply(c.phrases.GreetingTemplate, c.phrases.GreetingReplies), true
		}
	}
	return Reply{}, false
}

// Thanks matches a short message containing a thanks word.
func (c *Classifier) Thanks(text string) (Reply, bool) {
	words := c.cleanWords(text)
	if len(words) == 0 || len(words) > c.phrases.ThanksMaxWords {
		return Reply{}, false
	}
	for _, w := range words {
		if _, ok := c.thanks[w]; ok {
			return c.reply(c.phrases.ThanksTemplate, c.phrases.ThanksReplies), true
		}
	}
	return Reply{}, false
}

// LooksEnglish guesses whether text is English from its share of English
// stopwords. Terse texts ("Wifi password?") carry too few words to judge
// and count as English.
func (c *Classifier) LooksEnglish(text string) bool {
	words := c.tokenizer.Words(text)
	if len(words) == 0 || len(words) < c.phrases.EnglishMinWords {
		return true
	}
	return c.stops.Ratio(words) >= c.phrases.EnglishRatio
}

func (c *Classifier) reply(template string, choices []string) Reply {
	opener := ""
	if len(choices) > 0 {
		opener = choices[c.Choose(len(choices))]
	}
	return Reply{Template: strings.ReplaceAll(template, "{reply}", opener)}
}

// cleanWords keeps the lowercased tokens made only of letters and
// apostrophes.
func (c *Classifier) cleanWords(text string) []string {
	var out []string
	for _, tok := range c.tokenizer.Tokens(text) {
		if ingest.IsWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func hasPrefix(words, prefix []string) bool {
	if len(prefix) > len(words) {
		return false
	}
	for i, p := range prefix {
		if words[i] != p {
			return false
		}
	}
	return true
}
