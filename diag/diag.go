// SPDX-License-Identifier: EPL-2.0

// Package diag is the user-visible session log. Entries are written through
// logrus and kept in a bounded in-memory list for the UI to render.
package diag

import (
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the number of entries kept when none is given.
const DefaultCapacity = 500

// Entry is one log line as the UI shows it.
type Entry struct {
	Time    time.Time
	Level   logrus.Level
	Message string
	Err     error
}

// Log implements session.Diagnostics.
type Log struct {
	logger logrus.FieldLogger

	mu       sync.Mutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

// New returns a Log writing to logger and keeping at most capacity entries.
// A nil logger discards output.
func New(logger logrus.FieldLogger, capacity int) *Log {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		logger:   logger.WithField("component", "session"),
		capacity: capacity,
		now:      time.Now,
	}
}

// NewLogger builds a text logger on out at the named level. An unknown
// level falls back to info.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

func (l *Log) Info(msg string) {
	l.logger.Info(msg)
	l.append(logrus.InfoLevel, msg, nil)
}

func (l *Log) Warn(msg string) {
	l.logger.Warn(msg)
	l.append(logrus.WarnLevel, msg, nil)
}

func (l *Log) Error(msg string, err error) {
	l.logger.WithError(err).Error(msg)
	l.append(logrus.ErrorLevel, msg, err)
}

// Clear drops the in-memory entries. Output already written is untouched.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Entries returns a copy of the kept entries, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) append(level logrus.Level, msg string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, Entry{Time: l.now(), Level: level, Message: msg, Err: err})
}
