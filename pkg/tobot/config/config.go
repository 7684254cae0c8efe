// Package config loads the bot settings and the text resources it runs on.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/tobot/pkg/tobot/internalerr"
)

// Config is the top level settings file.
type Config struct {
	API        APIConfig      `yaml:"api"`
	Store      StoreConfig    `yaml:"store"`
	Corpus     CorpusConfig   `yaml:"corpus"`
	Text       TextConfig     `yaml:"text"`
	Lookup     LookupConfig   `yaml:"lookup"`
	Poll       PollConfig     `yaml:"poll"`
	Messages   MessagesConfig `yaml:"messages"`
	TrainQueue string         `yaml:"train_queue"`
}

// APIConfig configures the inbox client. Credentials are opaque strings.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	OAuthToken  string        `yaml:"oauth_token"`
	UserAgent   string        `yaml:"user_agent"`
	Locale      string        `yaml:"locale"`
	Currency    string        `yaml:"currency"`
	Timeout     time.Duration `yaml:"timeout"`
	ThreadLimit int           `yaml:"thread_limit"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type CorpusConfig struct {
	Path string `yaml:"path"`
	// SelfExclusion is "index" or "rank".
	SelfExclusion string `yaml:"self_exclusion"`
}

// TextConfig points at optional resource files. Empty paths use built-ins.
type TextConfig struct {
	StoplistPath string `yaml:"stoplist"`
	DictPath     string `yaml:"dict"`
	LemmaPath    string `yaml:"lemmas"`
	PhrasesPath  string `yaml:"phrases"`
}

type LookupConfig struct {
	WeightMultiplier   float64 `yaml:"weight_multiplier"`
	ConfidenceRequired float64 `yaml:"confidence_required"`
	DropFrequent       int     `yaml:"drop_frequent"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Training also walks read threads and queues lessons instead of replying.
	Training bool `yaml:"training"`
	// Testing never sends or marks anything.
	Testing        bool `yaml:"testing"`
	MarkRead       bool `yaml:"mark_read"`
	SendCheckout   bool `yaml:"send_checkout"`
	CheckoutHour   int  `yaml:"checkout_hour"`
	SendNewBooking bool `yaml:"send_new_booking"`
}

// MessagesConfig holds reply templates. {name} is the guest's first name,
// {answer} the looked up response.
type MessagesConfig struct {
	NewBooking     string `yaml:"new_booking"`
	Checkout       string `yaml:"checkout"`
	WriteInEnglish string `yaml:"write_in_english"`
	Answer         string `yaml:"answer"`
	LowConfidence  string `yaml:"low_confidence"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "https://api.airbnb.com/v2",
			UserAgent:   "Airbnb/17.50 iPad/11.2.1 Type/Tablet",
			Locale:      "en",
			Currency:    "USD",
			Timeout:     15 * time.Second,
			ThreadLimit: 50,
		},
		Store:  StoreConfig{Path: "tobot_db.sqlite"},
		Corpus: CorpusConfig{Path: "tobot_corpus.txt", SelfExclusion: "index"},
		Lookup: LookupConfig{
			WeightMultiplier:   5.0,
			ConfidenceRequired: 0.5,
			DropFrequent:       2,
		},
		Poll: PollConfig{
			Interval:       2 * time.Minute,
			MarkRead:       true,
			SendCheckout:   true,
			CheckoutHour:   11,
			SendNewBooking: true,
		},
		Messages: MessagesConfig{
			NewBooking:     "Hi {name}, thanks for booking! Let me know if you have any questions before your stay.",
			Checkout:       "Hi {name}, just a reminder that checkout is today. Thanks for staying with us!",
			WriteInEnglish: "Hi {name}, sorry, could you please write your message in English?",
			Answer:         "Hello {name}, {answer}",
			LowConfidence:  "Hello {name}, regarding {answer}",
		},
		TrainQueue: "tobot_lessons.jsonl",
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means defaults plus environment only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TOBOT_APIKEY"); ok && v != "" {
		c.API.APIKey = v
	}
	if v, ok := lookup("TOBOT_OAUTHTOKEN"); ok && v != "" {
		c.API.OAuthToken = v
	}
	if v, ok := lookup("TOBOT_DB"); ok && v != "" {
		c.Store.Path = v
	}
	if v, ok := lookup("TOBOT_CORPUS"); ok && v != "" {
		c.Corpus.Path = v
	}
}

// Validate checks the settings every binary depends on.
func (c Config) Validate() error {
	var errs []error
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is empty"))
	}
	if c.Lookup.WeightMultiplier <= 0 {
		errs = append(errs, errors.New("lookup.weight_multiplier must be positive"))
	}
	if c.Lookup.ConfidenceRequired < 0 {
		errs = append(errs, errors.New("lookup.confidence_required must not be negative"))
	}
	if c.Lookup.DropFrequent < 0 {
		errs = append(errs, errors.New("lookup.drop_frequent must not be negative"))
	}
	switch c.Corpus.SelfExclusion {
	case "index", "rank":
	default:
		errs = append(errs, fmt.Errorf("corpus.self_exclusion %q: want index or rank", c.Corpus.SelfExclusion))
	}
	if c.Poll.Interval <= 0 {
		errs = append(errs, errors.New("poll.interval must be positive"))
	}
	if c.Poll.CheckoutHour < 0 || c.Poll.CheckoutHour > 23 {
		errs = append(errs, errors.New("poll.checkout_hour must be within 0..23"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RequireCredentials checks that the inbox credentials are present.
func (c Config) RequireCredentials() error {
	if c.API.APIKey == "" || c.API.OAuthToken == "" {
		return fmt.Errorf("%w: api key and oauth token are required (TOBOT_APIKEY, TOBOT_OAUTHTOKEN)", internalerr.ErrInvalidConfig)
	}
	return nil
}
