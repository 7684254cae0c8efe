// Package rank fuses the corpus and association lookups into one reply.
package rank

import "github.com/cognicore/tobot/pkg/tobot/answer"

// Breakdown records both inputs of a fusion and the chosen candidate.
type Breakdown struct {
	Corpus answer.Candidate
	DB     answer.Candidate
	Chosen answer.Candidate
}

// Fuse picks between a corpus and an association candidate.
//
// When both found something the corpus wins only with a strictly higher
// confidence; ties go to the association store. When neither found
// anything the result is NoSignal if both lacked signal, NoMatch otherwise.
func Fuse(fromCorpus, fromDB answer.Candidate) answer.Candidate {
	return Explain(fromCorpus, fromDB).Chosen
}

// Explain is Fuse with its inputs kept for logging.
func Explain(fromCorpus, fromDB answer.Candidate) Breakdown {
	b := Breakdown{Corpus: fromCorpus, DB: fromDB}

	switch {
	case fromCorpus.Found() && fromDB.Found():
		if fromCorpus.Confidence > fromDB.Confidence {
			b.Chosen = fromCorpus
		} else {
			b.Chosen = fromDB
		}
	case fromCorpus.Found():
		b.Chosen = fromCorpus
	case fromDB.Found():
		b.Chosen = fromDB
	case fromCorpus.Status == answer.NoSignal && fromDB.Status == answer.NoSignal:
		b.Chosen = answer.Miss(answer.NoSignal, answer.SourceNone)
	default:
		b.Chosen = answer.Miss(answer.NoMatch, answer.SourceNone)
	}
	return b
}
