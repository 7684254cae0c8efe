package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Dict represents the multi-token phrase dictionary
type Dict struct {
	Entries []DictEntry
}

// DictEntry represents a dictionary entry
type DictEntry struct {
	Canonical string
	Variants  []string
	Category  string
}

// DefaultDict covers the spellings guests use for the common stay events.
func DefaultDict() *Dict {
	return &Dict{Entries: []DictEntry{
		{Canonical: "checkin", Variants: []string{"check in", "check-in"}, Category: "stay"},
		{Canonical: "checkout", Variants: []string{"check out", "check-out"}, Category: "stay"},
		{Canonical: "wifi", Variants: []string{"wi-fi", "wi fi"}, Category: "amenity"},
	}}
}

// LoadDict loads the multi-token dictionary from a file
// Format: canonical|variant1|variant2|category
func LoadDict(path string) (*Dict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dict := &Dict{Entries: []DictEntry{}}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 2 {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		// with exactly two fields the second is a variant, not a category
		entry := DictEntry{Canonical: parts[0]}
		if len(parts) == 2 {
			entry.Variants = parts[1:]
		} else {
			entry.Variants = parts[1 : len(parts)-1]
			entry.Category = parts[len(parts)-1]
		}

		dict.Entries = append(dict.Entries, entry)
	}

	return dict, nil
}
