package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/tobot/pkg/tobot/ingest"
	"github.com/cognicore/tobot/pkg/tobot/lexicon"
	"github.com/cognicore/tobot/pkg/tobot/stoplist"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := NewLoader(Default()).Load()
	require.NoError(t, err)
	require.NotNil(t, comp.Normalizer)

	assert.Equal(t, ingest.Bag{"checkin": 1}, comp.Normalizer.Bag("When can I check in?"))
	assert.True(t, comp.Stops.IsStop("the"))
	assert.Equal(t, 3, comp.Phrases.GreetingMaxWords)
}

func TestLoaderValidFiles(t *testing.T) {
	stops := writeFile(t, "stoplist.yaml", "terms:\n  - please\n")
	dict := writeFile(t, "dict.txt", "hottub|hot tub|amenity\n")
	lemmas := writeFile(t, "lemmas.yaml", "lemmas:\n  - lemma: towel\n    forms: [towels]\n")
	phrases := writeFile(t, "phrases.yaml", "greetings: [hola]\n")

	l := Loader{
		StoplistPath: stops,
		DictPath:     dict,
		LemmaPath:    lemmas,
		PhrasesPath:  phrases,
	}
	comp, err := l.Load()
	require.NoError(t, err)

	assert.True(t, comp.Stops.IsStop("please"))
	assert.True(t, comp.Stops.IsStop("the"))
	assert.Equal(t, 2, comp.Parser.Len())
	assert.Equal(t, "towel", comp.Lexicon.Lemma("towels"))
	assert.Equal(t, []string{"hola"}, comp.Phrases.Greetings)

	bag := comp.Normalizer.Bag("please clean the hot tub and bring towels")
	assert.Contains(t, bag, "hottub")
	assert.Contains(t, bag, "towel")
	assert.NotContains(t, bag, "please")

	st := comp.Stats()
	assert.Equal(t, 2, st.Phrases)
	assert.Equal(t, map[string]int{"amenity": 1}, st.Categories)
	assert.Equal(t, lexicon.Stats{Lemmas: 1, TotalForms: 2}, st.Lexicon)
	assert.Equal(t, len(stoplist.English)+1, st.Stopwords)
}

func TestLoaderMissingFiles(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	for _, l := range []Loader{
		{StoplistPath: missing},
		{DictPath: missing},
		{LemmaPath: missing},
		{PhrasesPath: missing},
	} {
		_, err := l.Load()
		assert.Error(t, err)
	}
}

func TestLoaderMalformedStoplist(t *testing.T) {
	path := writeFile(t, "bad.yaml", "invalid: {yaml content\n")
	_, err := Loader{StoplistPath: path}.Load()
	assert.Error(t, err)
}
