package stoplist

import "strings"

// Manager holds a stopword set
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		stops[strings.ToLower(s)] = struct{}{}
	}
	return &Manager{stops: stops}
}

// NewEnglish returns a manager seeded with the default English list plus extras.
func NewEnglish(extra ...string) *Manager {
	m := NewManager(English)
	for _, s := range extra {
		m.Add(s)
	}
	return m
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[strings.ToLower(token)] = struct{}{}
}

// Len returns the number of stopwords
func (m *Manager) Len() int {
	return len(m.stops)
}

// Ratio returns the share of tokens that are stopwords, 0 for no tokens.
func (m *Manager) Ratio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if m.IsStop(t) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
