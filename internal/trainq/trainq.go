// Package trainq queues training lessons collected by the poller for later
// review in the brain shell. The queue is a JSONL file, one lesson per line.
package trainq

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Lesson is a guest question with the replies that could teach the bot.
type Lesson struct {
	ID       string `json:"id"`
	ThreadID int64  `json:"thread_id"`
	Guest    string `json:"guest"`
	Question string `json:"question"`
	// Suggested is the bot's own candidate, empty when it found none.
	Suggested  string    `json:"suggested,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	HostReply  string    `json:"host_reply,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Queue is a JSONL lesson file. Writers hold an advisory lock on a sibling
// .lock file, so the daemon and the brain shell can share one queue.
type Queue struct {
	path    string
	log     *zap.Logger
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New opens a queue at path. The file is created on first append.
func New(path string, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		path:    path,
		log:     logger,
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Path returns the queue file.
func (q *Queue) Path() string {
	return q.path
}

// Append adds a lesson, filling ID and CreatedAt when empty.
func (q *Queue) Append(l Lesson) (Lesson, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.ID == "" {
		l.ID = ulid.MustNew(ulid.Timestamp(now), q.entropy).String()
	}

	line, err := json.Marshal(l)
	if err != nil {
		return l, fmt.Errorf("encode lesson: %w", err)
	}

	unlock, err := lockFile(q.path)
	if err != nil {
		return l, err
	}
	defer unlock()

	f, err := os.OpenFile(q.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return l, fmt.Errorf("open queue %s: %w", q.path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return l, fmt.Errorf("append lesson: %w", err)
	}
	return l, f.Close()
}

// Load returns the queued lessons in file order. A missing file is an empty
// queue; malformed lines are skipped.
func (q *Queue) Load() ([]Lesson, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

func (q *Queue) load() ([]Lesson, error) {
	data, err := os.ReadFile(q.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", q.path, err)
	}

	var lessons []Lesson
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var l Lesson
		if err := json.Unmarshal(line, &l); err != nil {
			q.log.Warn("skipping malformed lesson",
				zap.String("path", q.path),
				zap.Int("line", n),
				zap.Error(err),
			)
			continue
		}
		lessons = append(lessons, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", q.path, err)
	}
	return lessons, nil
}

// Remove drops the lessons with the given IDs, rewriting the file.
func (q *Queue) Remove(ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	unlock, err := lockFile(q.path)
	if err != nil {
		return err
	}
	defer unlock()

	lessons, err := q.load()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, l := range lessons {
		if drop[l.ID] {
			continue
		}
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("encode lesson: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(q.path), ".trainq-*")
	if err != nil {
		return fmt.Errorf("rewrite queue: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("rewrite queue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rewrite queue: %w", err)
	}
	if err := os.Rename(tmp.Name(), q.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rewrite queue: %w", err)
	}
	return nil
}
