// Package poller drives the bot: it walks the host inbox, gates each guest
// message through the classifier and replies with the best response.
package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/tobot/internal/messaging"
	"github.com/cognicore/tobot/internal/trainq"
	"github.com/cognicore/tobot/pkg/tobot/answer"
	"github.com/cognicore/tobot/pkg/tobot/classify"
	"github.com/cognicore/tobot/pkg/tobot/config"
)

// Inbox is the messaging collaborator.
type Inbox interface {
	ListThreads(ctx context.Context, f messaging.ThreadFilter) ([]messaging.ThreadSummary, error)
	GetThread(ctx context.Context, id int64) (*messaging.Thread, error)
	SendMessage(ctx context.Context, threadID int64, text string) error
	MarkRead(ctx context.Context, threadID int64) error
}

// Responder finds a reply for a guest message.
type Responder interface {
	Respond(ctx context.Context, msg string) (answer.Candidate, error)
}

// LessonSink receives questions the bot could not answer confidently.
type LessonSink interface {
	Append(l trainq.Lesson) (trainq.Lesson, error)
}

// Options configures a Poller.
type Options struct {
	Inbox      Inbox
	Responder  Responder
	Classifier *classify.Classifier
	// Lessons may be nil.
	Lessons            LessonSink
	Poll               config.PollConfig
	Messages           config.MessagesConfig
	ConfidenceRequired float64
	ThreadLimit        int
	Logger             *zap.Logger
	Now                func() time.Time
	Location           *time.Location
}

// Stats counts what the poller did since it started.
type Stats struct {
	Polls      int
	Threads    int
	Skipped    int
	Replies    int
	NoResponse int
	MarkedRead int
	Lessons    int
	Errors     int
}

// Poller processes inbox threads. Each thread is handled at most once per
// process.
type Poller struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	processed map[int64]bool
	stats     Stats
}

// New creates a poller.
func New(opts Options) *Poller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New(classify.DefaultPhrases())
	}
	return &Poller{
		opts:      opts,
		log:       opts.Logger,
		processed: make(map[int64]bool),
	}
}

// Stats returns a snapshot of the counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Poller) count(f func(*Stats)) {
	p.mu.Lock()
	f(&p.stats)
	p.mu.Unlock()
}

// Run polls until ctx is cancelled or the inbox cannot be listed. A failed
// listing stops the loop with its error.
func (p *Poller) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := p.RunOnce(ctx); err != nil {
			return err
		}
		p.log.Info("sleeping", zap.Duration("interval", p.opts.Poll.Interval))
		timer.Reset(p.opts.Poll.Interval)
	}
}

// RunOnce lists the inbox and processes every eligible thread. Thread
// handling runs to completion even if ctx is cancelled meanwhile.
func (p *Poller) RunOnce(ctx context.Context) error {
	p.count(func(s *Stats) { s.Polls++ })

	threads, err := p.opts.Inbox.ListThreads(ctx, messaging.ThreadFilter{Limit: p.opts.ThreadLimit})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("list threads: %w", err)
	}

	eligible := p.eligible(threads)
	p.log.Info("checked inbox", zap.Int("threads", len(threads)), zap.Int("eligible", len(eligible)))

	work := context.WithoutCancel(ctx)
	for _, th := range eligible {
		if err := p.processThread(work, th); err != nil {
			p.count(func(s *Stats) { s.Errors++ })
			p.log.Error("process thread", zap.Int64("thread_id", th.ID), zap.Error(err))
		}
	}
	return nil
}

// eligible keeps unread guest threads, plus read ones in training mode.
// Support threads are never eligible.
func (p *Poller) eligible(threads []messaging.ThreadSummary) []messaging.ThreadSummary {
	var unread, read []messaging.ThreadSummary
	for _, th := range threads {
		switch {
		case th.IsSupport():
		case th.Unread:
			unread = append(unread, th)
		default:
			read = append(read, th)
		}
	}
	if p.opts.Poll.Training {
		unread = append(unread, read...)
	}
	return unread
}

func (p *Poller) markProcessed(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.processed[id] {
		return false
	}
	p.processed[id] = true
	p.stats.Threads++
	return true
}

func (p *Poller) processThread(ctx context.Context, th messaging.ThreadSummary) error {
	if !p.markProcessed(th.ID) {
		return nil
	}
	log := p.log.With(
		zap.Int64("thread_id", th.ID),
		zap.String("guest", th.Guest.FirstName),
		zap.Int("guests", th.NumGuests()),
	)

	if th.Status == messaging.StatusPending || th.Status == messaging.StatusCancelled {
		log.Info("skipping booking request", zap.String("status", th.Status))
		p.count(func(s *Stats) { s.Skipped++ })
		return nil
	}

	now := p.opts.Now().In(p.opts.Location)
	if p.checkoutDue(th, now) {
		log.Info("guest checks out today")
		return p.send(ctx, log, th, p.render(p.opts.Messages.Checkout, th.Guest.FirstName, ""))
	}

	thread, err := p.opts.Inbox.GetThread(ctx, th.ID)
	if err != nil {
		return err
	}

	turns, guestPosts, hostPosts := Conversation(thread.Posts, th.Guest.ID)
	if guestPosts == 0 || len(turns) == 0 {
		return nil
	}
	newBooking := hostPosts == 0

	if !p.opts.Poll.Training {
		last := turns[len(turns)-1]
		return p.handle(ctx, log, th, last.GuestText(), last.HostText(), newBooking)
	}

	// The opening turn is the greeting and check in instructions, the closing
	// one after checkout is the goodbye.
	turns = turns[1:]
	if checkout := th.Checkout(p.opts.Location); !checkout.IsZero() && !now.Before(checkout) && len(turns) > 0 {
		turns = turns[:len(turns)-1]
	}
	for _, t := range turns {
		if err := p.handle(ctx, log, th, t.GuestText(), t.HostText(), newBooking); err != nil {
			return err
		}
	}
	return nil
}

func (p *Poller) checkoutDue(th messaging.ThreadSummary, now time.Time) bool {
	return !p.opts.Poll.Training &&
		p.opts.Poll.SendCheckout &&
		th.CheckoutDate == now.Format("2006-01-02") &&
		now.Hour() >= p.opts.Poll.CheckoutHour
}

func (p *Poller) handle(ctx context.Context, log *zap.Logger, th messaging.ThreadSummary, text, hostReply string, newBooking bool) error {
	if text == "" {
		return nil
	}
	name := th.Guest.FirstName
	cls := p.opts.Classifier
	log.Info("guest wrote", zap.String("message", oneLine(text)))

	if !p.opts.Poll.Training && p.opts.Poll.SendNewBooking && newBooking && th.Status == messaging.StatusAccepted {
		log.Info("new accepted booking")
		return p.send(ctx, log, th, p.render(p.opts.Messages.NewBooking, name, ""))
	}
	if r, ok := cls.Greeting(text); ok {
		return p.send(ctx, log, th, r.Render(name))
	}
	if r, ok := cls.Thanks(text); ok && !cls.IsQuestion(text) {
		return p.send(ctx, log, th, r.Render(name))
	}
	if th.ShouldTranslate && !cls.LooksEnglish(text) {
		log.Info("message is not in english")
		return p.send(ctx, log, th, p.render(p.opts.Messages.WriteInEnglish, name, ""))
	}
	if !cls.IsQuestion(text) {
		log.Debug("not a question, skipping")
		return nil
	}

	res, err := p.opts.Responder.Respond(ctx, text)
	if err != nil {
		return err
	}

	if !res.Found() {
		log.Info("no response found", zap.Error(res.Err()))
		p.count(func(s *Stats) { s.NoResponse++ })
		p.queueLesson(log, th, text, answer.Candidate{}, hostReply)
		return nil
	}

	log.Info("found response",
		zap.Float64("confidence", res.Confidence),
		zap.String("source", string(res.Source)),
	)
	if res.Confidence < p.opts.ConfidenceRequired {
		log.Info("confidence too low to reply",
			zap.String("draft", p.render(p.opts.Messages.LowConfidence, name, res.Text)),
		)
		p.count(func(s *Stats) { s.NoResponse++ })
		p.queueLesson(log, th, text, res, hostReply)
		return nil
	}

	if err := p.send(ctx, log, th, p.render(p.opts.Messages.Answer, name, res.Text)); err != nil {
		return err
	}
	if p.opts.Poll.Testing || p.opts.Poll.Training || !p.opts.Poll.MarkRead {
		return nil
	}
	if err := p.opts.Inbox.MarkRead(ctx, th.ID); err != nil {
		return err
	}
	p.count(func(s *Stats) { s.MarkedRead++ })
	return nil
}

// send delivers a reply. Testing and training modes only log it.
func (p *Poller) send(ctx context.Context, log *zap.Logger, th messaging.ThreadSummary, reply string) error {
	if p.opts.Poll.Testing || p.opts.Poll.Training {
		log.Info("would send reply", zap.String("reply", reply))
		p.count(func(s *Stats) { s.Replies++ })
		return nil
	}
	log.Info("sending reply", zap.String("reply", reply))
	if err := p.opts.Inbox.SendMessage(ctx, th.ID, reply); err != nil {
		return err
	}
	p.count(func(s *Stats) { s.Replies++ })
	return nil
}

func (p *Poller) queueLesson(log *zap.Logger, th messaging.ThreadSummary, question string, res answer.Candidate, hostReply string) {
	if p.opts.Lessons == nil {
		return
	}
	l, err := p.opts.Lessons.Append(trainq.Lesson{
		ThreadID:   th.ID,
		Guest:      th.Guest.FirstName,
		Question:   question,
		Suggested:  res.Text,
		Confidence: res.Confidence,
		HostReply:  hostReply,
	})
	if err != nil {
		log.Warn("queue lesson", zap.Error(err))
		return
	}
	p.count(func(s *Stats) { s.Lessons++ })
	log.Debug("queued lesson", zap.String("lesson_id", l.ID))
}

func (p *Poller) render(template, name, text string) string {
	return strings.NewReplacer("{name}", name, "{answer}", text).Replace(template)
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
