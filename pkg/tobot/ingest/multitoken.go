package ingest

import "strings"

// MultiTokenParser merges known phrases into a single canonical token,
// e.g. "check in" and "check-in" both become "checkin".
type MultiTokenParser struct {
	dict   map[string]DictEntry // phrase → entry
	maxLen int
}

// DictEntry represents a dictionary entry for a multi-token phrase
type DictEntry struct {
	Canonical string
	Category  string
	Variants  []string
}

// NewMultiTokenParser creates a new parser with the given dictionary
func NewMultiTokenParser(entries []DictEntry) *MultiTokenParser {
	dict := make(map[string]DictEntry)
	maxLen := 1
	add := func(phrase string, e DictEntry) {
		key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if key == "" {
			return
		}
		dict[key] = e
		if l := len(strings.Fields(key)); l > maxLen {
			maxLen = l
		}
	}
	for _, e := range entries {
		e.Canonical = strings.ToLower(strings.TrimSpace(e.Canonical))
		add(e.Canonical, e)
		for _, v := range e.Variants {
			add(v, e)
		}
	}
	return &MultiTokenParser{dict: dict, maxLen: maxLen}
}

// Len returns the number of phrases the parser recognizes.
func (p *MultiTokenParser) Len() int {
	return len(p.dict)
}

// Categories counts the canonical phrases of each category. Entries
// without a category are not counted.
func (p *MultiTokenParser) Categories() map[string]int {
	seen := make(map[string]bool)
	counts := make(map[string]int)
	for _, e := range p.dict {
		if e.Category == "" || seen[e.Canonical] {
			continue
		}
		seen[e.Canonical] = true
		counts[e.Category]++
	}
	return counts
}

// Parse applies greedy longest-match to recognize multi-token phrases.
// Single tokens that are listed as variants are rewritten to the canonical form.
func (p *MultiTokenParser) Parse(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	i := 0

	for i < len(tokens) {
		matched := ""
		matchLen := 1

		maxPhrase := p.maxLen
		if remaining := len(tokens) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			phrase := strings.ToLower(strings.Join(tokens[i:i+n], " "))
			if entry, ok := p.dict[phrase]; ok {
				matched = entry.Canonical
				matchLen = n
				break
			}
		}

		if matched == "" {
			if entry, ok := p.dict[strings.ToLower(tokens[i])]; ok {
				matched = entry.Canonical
			} else {
				matched = tokens[i]
			}
		}
		result = append(result, matched)
		i += matchLen
	}

	return result
}
