package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cognicore/tobot/internal/trainq"
	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/brain"
	"github.com/cognicore/tobot/pkg/tobot/config"
	"github.com/cognicore/tobot/pkg/tobot/store"
)

// Brain is the engine surface the shell drives.
type Brain interface {
	Respond(ctx context.Context, msg string) (answer.Candidate, error)
	Train(ctx context.Context, question, answerText string) (brain.TrainOutcome, error)
	Size(ctx context.Context) (store.Size, error)
	Dump(ctx context.Context) (store.Dump, error)
	CorpusSize() (sentences, words int)
}

// LessonQueue holds lessons waiting for review.
type LessonQueue interface {
	Load() ([]trainq.Lesson, error)
	Remove(ids ...string) error
}

const helpText = `
    help|?           prints help
    quit|bye|exit    exit program
    braindump        dumps database
    brainsize        shows size of database
    trainbot         add new question and reply to database
    testbot          looks up response in database to question
    review           train from lessons queued by the bot
`

// Shell is the interactive brain console.
type Shell struct {
	brain              Brain
	lessons            LessonQueue
	confidenceRequired float64
	text               *config.TextStats

	in  *bufio.Scanner
	out io.Writer
}

// NewShell creates a shell reading commands from in. lessons may be nil.
func NewShell(b Brain, lessons LessonQueue, confidenceRequired float64, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		brain:              b,
		lessons:            lessons,
		confidenceRequired: confidenceRequired,
		in:                 bufio.NewScanner(in),
		out:                out,
	}
}

// WithTextStats makes brainsize also report the loaded text resources.
func (s *Shell) WithTextStats(ts config.TextStats) *Shell {
	s.text = &ts
	return s
}

// Run reads commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "TOBOT CLI; type ? or help for commands, quit or bye to exit.")
	for {
		line, ok := s.prompt("TOBOT> ")
		if !ok {
			break
		}
		if ctx.Err() != nil {
			break
		}

		var err error
		switch line {
		case "":
			continue
		case "quit", "bye", "exit":
			fmt.Fprintln(s.out, "Sayonara..")
			return nil
		case "?", "help":
			fmt.Fprint(s.out, helpText)
		case "braindump":
			err = s.dump(ctx)
		case "brainsize":
			err = s.size(ctx)
		case "trainbot":
			err = s.train(ctx)
		case "testbot":
			err = s.test(ctx)
		case "review":
			err = s.review(ctx)
		default:
			fmt.Fprintln(s.out, "Sorry, I don't understand, type help or ? to see all commands")
		}
		if err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
	fmt.Fprintln(s.out, "Sayonara..")
	return s.in.Err()
}

func (s *Shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) dump(ctx context.Context) error {
	d, err := s.brain.Dump(ctx)
	if err != nil {
		return err
	}
	if len(d.Sentences) == 0 {
		fmt.Fprintln(s.out, "sentences empty")
	} else {
		fmt.Fprintln(s.out, "sentences: ")
		for _, r := range d.Sentences {
			fmt.Fprintf(s.out, "(%d, %q, %d)\n", r.ID, r.Sentence, r.Used)
		}
	}
	if len(d.Words) == 0 {
		fmt.Fprintln(s.out, "words empty")
	} else {
		fmt.Fprintln(s.out, "words: ")
		for _, r := range d.Words {
			fmt.Fprintf(s.out, "(%d, %q)\n", r.ID, r.Word)
		}
	}
	if len(d.Associations) == 0 {
		fmt.Fprintln(s.out, "associations empty")
	} else {
		fmt.Fprintln(s.out, "associations: ")
		for _, r := range d.Associations {
			fmt.Fprintf(s.out, "(%d, %d, %.6f)\n", r.WordID, r.SentenceID, r.Weight)
		}
	}
	return nil
}

func (s *Shell) size(ctx context.Context) error {
	sz, err := s.brain.Size(ctx)
	if err != nil {
		return err
	}
	sentences, words := s.brain.CorpusSize()
	fmt.Fprintf(s.out, "TOBOT: BRAIN(file) (sentences: %d, words: %d)\n", sentences, words)
	fmt.Fprintf(s.out, "TOBOT: BRAIN(db) (sentences: %d, words: %d, associations: %d)\n",
		sz.Sentences, sz.Words, sz.Associations)
	if s.text != nil {
		fmt.Fprintf(s.out, "TOBOT: TEXT (stopwords: %d, phrases: %d%s, lemmas: %d, forms: %d)\n",
			s.text.Stopwords, s.text.Phrases, formatCategories(s.text.Categories),
			s.text.Lexicon.Lemmas, s.text.Lexicon.TotalForms)
	}
	return nil
}

func formatCategories(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, counts[name])
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func (s *Shell) train(ctx context.Context) error {
	q, ok := s.prompt("Human question: ")
	if !ok || q == "" {
		return nil
	}
	a, ok := s.prompt("Bot response: ")
	if !ok || a == "" {
		return nil
	}
	return s.teach(ctx, q, a)
}

func (s *Shell) teach(ctx context.Context, q, a string) error {
	out, err := s.brain.Train(ctx, q, a)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, out)
	return nil
}

func (s *Shell) test(ctx context.Context) error {
	q, ok := s.prompt("Question: ")
	if !ok || q == "" {
		return nil
	}
	res, err := s.brain.Respond(ctx, strings.ToLower(q))
	if err != nil {
		return err
	}
	if !res.Found() {
		fmt.Fprintln(s.out, "TOBOT Reply: no response found, need more training")
		return nil
	}
	fmt.Fprintf(s.out, "TOBOT Reply: %s (confidence: %.4f (%s))\n", res.Text, res.Confidence, res.Source)
	if res.Confidence < s.confidenceRequired {
		fmt.Fprintln(s.out, "TOBOT: confidence too low to send reply, need more training")
	}
	return nil
}

// review walks the queued lessons. Handled lessons leave the queue, skipped
// ones stay.
func (s *Shell) review(ctx context.Context) error {
	if s.lessons == nil {
		fmt.Fprintln(s.out, "no lesson queue configured")
		return nil
	}
	lessons, err := s.lessons.Load()
	if err != nil {
		return err
	}
	if len(lessons) == 0 {
		fmt.Fprintln(s.out, "no lessons to review")
		return nil
	}

	var done []string
	defer func() {
		if len(done) > 0 {
			if err := s.lessons.Remove(done...); err != nil {
				fmt.Fprintln(s.out, "Error:", err)
			}
		}
	}()

	for i, l := range lessons {
		fmt.Fprintf(s.out, "\nLesson %d/%d (thread %d, %s)\n", i+1, len(lessons), l.ThreadID, l.Guest)
		fmt.Fprintf(s.out, "  Guest:     %s\n", l.Question)
		if l.Suggested != "" {
			fmt.Fprintf(s.out, "  Suggested: %s (confidence: %.4f)\n", l.Suggested, l.Confidence)
		}
		if l.HostReply != "" {
			fmt.Fprintf(s.out, "  Host:      %s\n", l.HostReply)
		}

		choice, ok := s.prompt("Teach TOBOT? [h]ost reply, [s]uggested, [c]ustom, [d]iscard, [k]eep, [q]uit: ")
		if !ok {
			return nil
		}
		switch strings.ToLower(choice) {
		case "h":
			if l.HostReply == "" {
				fmt.Fprintln(s.out, "no host reply, keeping lesson")
				continue
			}
			if err := s.teach(ctx, l.Question, l.HostReply); err != nil {
				return err
			}
		case "s":
			if l.Suggested == "" {
				fmt.Fprintln(s.out, "no suggestion, keeping lesson")
				continue
			}
			if err := s.teach(ctx, l.Question, l.Suggested); err != nil {
				return err
			}
		case "c":
			a, ok := s.prompt("Bot response: ")
			if !ok || a == "" {
				continue
			}
			if err := s.teach(ctx, l.Question, a); err != nil {
				return err
			}
		case "d":
		case "q":
			return nil
		default:
			continue
		}
		done = append(done, l.ID)
	}
	return nil
}
