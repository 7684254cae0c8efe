// Package answer holds the result type shared by every response lookup.
//
// A lookup either finds a candidate, or reports why it could not: the
// message carried no usable words (NoSignal) or nothing scored above zero
// (NoMatch). Failures of the lookup itself are returned as errors by the
// caller and never encoded here.
package answer

import (
	"fmt"
	"strings"

	"github.com/cognicore/tobot/pkg/tobot/internalerr"
)

// Status tells whether a lookup produced a candidate.
type Status int

const (
	// NoSignal means normalization left nothing to evaluate.
	NoSignal Status = iota
	// NoMatch means the lookup ran but nothing scored above zero.
	NoMatch
	// Found means Text and Confidence are set.
	Found
)

func (s Status) String() string {
	switch s {
	case NoSignal:
		return "no-signal"
	case NoMatch:
		return "no-match"
	case Found:
		return "found"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Source names the lookup that produced a candidate.
type Source string

const (
	SourceNone   Source = ""
	SourceCorpus Source = "file"
	SourceDB     Source = "db"
)

// Candidate is a scored reply.
type Candidate struct {
	Status     Status
	Text       string
	Confidence float64
	Source     Source
}

// Found reports whether the candidate carries a reply.
func (c Candidate) Found() bool {
	return c.Status == Found
}

// Err maps a miss to internalerr.ErrNoSignal or internalerr.ErrNoMatch.
// It is nil for a found candidate.
func (c Candidate) Err() error {
	switch c.Status {
	case Found:
		return nil
	case NoSignal:
		return internalerr.ErrNoSignal
	default:
		return internalerr.ErrNoMatch
	}
}

// Hit builds a found candidate.
func Hit(text string, confidence float64, src Source) Candidate {
	return Candidate{Status: Found, Text: text, Confidence: confidence, Source: src}
}

// Miss builds a candidate without a reply.
func Miss(status Status, src Source) Candidate {
	return Candidate{Status: status, Source: src}
}

// Format drops the leading line of a multi-line reply (a greeting or
// header line in the training text) and joins the remaining lines with
// single spaces.
func Format(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 1 {
		lines = lines[1:]
	}
	return strings.Join(lines, " ")
}
