package config

import (
	"fmt"

	"github.com/cognicore/tobot/pkg/tobot/classify"
	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/lexicon"
	"github.com/cognicore/tobot/pkg/tobot/stoplist"
)

// Loader loads all text resource files and constructs components
type Loader struct {
	StoplistPath string
	DictPath     string
	LemmaPath    string
	PhrasesPath  string
	// DropFrequent is passed to Normalizer.SetDropFrequent as is.
	DropFrequent int
}

// NewLoader takes the resource paths from cfg.
func NewLoader(cfg Config) Loader {
	return Loader{
		StoplistPath: cfg.Text.StoplistPath,
		DictPath:     cfg.Text.DictPath,
		LemmaPath:    cfg.Text.LemmaPath,
		PhrasesPath:  cfg.Text.PhrasesPath,
		DropFrequent: cfg.Lookup.DropFrequent,
	}
}

// Components holds all loaded configuration components
type Components struct {
	Stops      *stoplist.Manager
	Parser     *ingest.MultiTokenParser
	Lexicon    *lexicon.Lexicon
	Normalizer *ingest.Normalizer
	Phrases    classify.Phrases
}

// Load reads all configuration files and returns initialized components
func (l Loader) Load() (*Components, error) {
	comp := &Components{}

	// The stoplist file extends the built-in English list.
	comp.Stops = stoplist.NewEnglish()
	if l.StoplistPath != "" {
		sl, err := LoadStoplist(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		for _, term := range sl.Terms {
			comp.Stops.Add(term)
		}
	}

	dict := DefaultDict()
	if l.DictPath != "" {
		var err error
		dict, err = LoadDict(l.DictPath)
		if err != nil {
			return nil, fmt.Errorf("load dictionary: %w", err)
		}
	}
	entries := make([]ingest.DictEntry, len(dict.Entries))
	for i, e := range dict.Entries {
		entries[i] = ingest.DictEntry{
			Canonical: e.Canonical,
			Variants:  e.Variants,
			Category:  e.Category,
		}
	}
	comp.Parser = ingest.NewMultiTokenParser(entries)

	comp.Lexicon = lexicon.New()
	if l.LemmaPath != "" {
		lex, err := lexicon.LoadFromYAML(l.LemmaPath)
		if err != nil {
			return nil, fmt.Errorf("load lemmas: %w", err)
		}
		comp.Lexicon = lex
	}

	comp.Phrases = classify.DefaultPhrases()
	if l.PhrasesPath != "" {
		p, err := classify.LoadPhrases(l.PhrasesPath)
		if err != nil {
			return nil, fmt.Errorf("load phrases: %w", err)
		}
		comp.Phrases = p
	}

	comp.Normalizer = ingest.NewNormalizer(comp.Parser, comp.Stops, comp.Lexicon)
	comp.Normalizer.SetDropFrequent(l.DropFrequent)

	return comp, nil
}

// TextStats summarizes the loaded text resources.
type TextStats struct {
	Stopwords  int
	Phrases    int
	Categories map[string]int
	Lexicon    lexicon.Stats
}

// Stats reports the size of each loaded resource.
func (c *Components) Stats() TextStats {
	return TextStats{
		Stopwords:  c.Stops.Len(),
		Phrases:    c.Parser.Len(),
		Categories: c.Parser.Categories(),
		Lexicon:    c.Lexicon.Stats(),
	}
}
