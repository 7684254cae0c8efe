package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Phrases holds the word sets and reply templates used by the classifier.
// Templates use {name} as the guest name placeholder.
type Phrases struct {
	QuestionWords    []string `yaml:"question_words"`
	Greetings        []string `yaml:"greetings"`
	GreetingReplies  []string `yaml:"greeting_replies"`
	GreetingTemplate string   `yaml:"greeting_template"`
	GreetingMaxWords int      `yaml:"greeting_max_words"`
	Thanks           []string `yaml:"thanks"`
	ThanksReplies    []string `yaml:"thanks_replies"`
	ThanksTemplate   string   `yaml:"thanks_template"`
	ThanksMaxWords   int      `yaml:"thanks_max_words"`
	// EnglishRatio is the minimum share of stopwords for LooksEnglish.
	EnglishRatio float64 `yaml:"english_ratio"`
	// EnglishMinWords is the shortest text LooksEnglish judges. Shorter
	// texts count as English.
	EnglishMinWords int `yaml:"english_min_words"`
}

// DefaultPhrases returns the built-in English phrase sets.
func DefaultPhrases() Phrases {
	return Phrases{
		QuestionWords: []string{
			"who", "what", "when", "where", "why", "how", "is", "can", "does", "do",
			"which", "am", "are", "was", "were", "may", "might", "could", "will",
			"shall", "would", "should", "has", "have", "had", "did",
		},
		Greetings:        []string{"hello", "hi", "greetings", "sup", "what's up", "hey"},
		GreetingReplies:  []string{"Hi", "Hey", "Hi there", "Hello"},
		GreetingTemplate: "{reply} {name}, do you have any questions?",
		GreetingMaxWords: 3,
		Thanks:           []string{"thanks", "thank", "appreciated", "thankyou"},
		ThanksReplies:    []string{"No problem", "Happy to help"},
		ThanksTemplate:   "{reply} {name}, you are welcome.",
		ThanksMaxWords:   4,
		EnglishRatio:     0.15,
		EnglishMinWords:  4,
	}
}

// LoadPhrases reads a YAML phrase file. Fields missing from the file keep
// their default value.
func LoadPhrases(path string) (Phrases, error) {
	p := DefaultPhrases()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read phrases: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse phrases: %w", err)
	}
	return p, nil
}
