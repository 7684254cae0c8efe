package lexicon

import (
	"os"
	"strings"

	"github.com/kljensen/snowball"
	"gopkg.in/yaml.v3"
)

// Lexicon reduces inflected words to a shared base form.
//
// Irregular forms are listed explicitly (children → child, went → go);
// everything else falls through to the Snowball English stemmer. Both the
// association store and the corpus vectorizer run tokens through the same
// Lexicon, so the base form only has to be consistent, not a dictionary word.
type Lexicon struct {
	// lemma -> all forms (including lemma itself)
	forms map[string][]string

	// form -> lemma
	reverseIndex map[string]string

}

// New creates a lexicon with no overrides.
func New() *Lexicon {
	return &Lexicon{
		forms:        make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads irregular lemma mappings from a YAML file.
//
// Expected format:
//
//	lemmas:
//	  - lemma: child
//	    forms: [children]
//	  - lemma: checkin
//	    forms: [checkins, check-in, check-ins]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config struct {
		Lemmas []struct {
			Lemma string   `yaml:"lemma"`
			Forms []string `yaml:"forms"`
		} `yaml:"lemmas"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for _, entry := range config.Lemmas {
		lex.AddForms(entry.Lemma, entry.Forms)
	}
	return lex, nil
}

// AddForms registers forms that reduce to lemma. The lemma maps to itself.
// Re-adding a lemma replaces its previous forms.
func (l *Lexicon) AddForms(lemma string, forms []string) {
	lemma = strings.ToLower(lemma)

	if old, exists := l.forms[lemma]; exists {
		for _, f := range old {
			delete(l.reverseIndex, f)
		}
	}

	normalized := make([]string, 0, len(forms)+1)
	seen := map[string]bool{lemma: true}
	normalized = append(normalized, lemma)
	for _, f := range forms {
		f = strings.ToLower(f)
		if !seen[f] {
			normalized = append(normalized, f)
			seen[f] = true
		}
	}

	l.forms[lemma] = normalized
	for _, f := range normalized {
		l.reverseIndex[f] = lemma
	}
}

// Lemma returns the base form of a lowercase token.
//
// Examples:
//   - Lemma("children") -> "child" (override)
//   - Lemma("towels") -> "towel" (stemmer)
func (l *Lexicon) Lemma(token string) string {
	if lemma, ok := l.reverseIndex[token]; ok {
		return lemma
	}
	stemmed, err := snowball.Stem(token, "english", true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, f := range l.forms {
		total += len(f)
	}
	return Stats{Lemmas: len(l.forms), TotalForms: total}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Lemmas     int
	TotalForms int
}
