package validate

import (
	"sync"
	"time"
)

// logCapacity bounds the rolling error log; the oldest entry is evicted first.
const logCapacity = 100

// Entry is one record in the rolling error log.
type Entry struct {
	Time    time.Time
	Source  string
	Message string
}

// Log is a capped, append-only ring of error entries shared by every
// category. It is the single place operator-visible faults accumulate:
// transport failures, server-reported item errors, consumer faults, and
// staleness warnings.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	dropped int64
	now     func() time.Time
}

// NewLog creates an empty rolling log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append records one error entry, evicting the oldest past capacity.
func (l *Log) Append(source, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Time: l.now(), Source: source, Message: message})
	if overflow := len(l.entries) - logCapacity; overflow > 0 {
		l.entries = append([]Entry(nil), l.entries[overflow:]...)
		l.dropped += int64(overflow)
	}
}

// Entries returns a copy of the current log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil
	}
	dup := make([]Entry, len(l.entries))
	copy(dup, l.entries)
	return dup
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Evicted returns how many entries have aged out of the log.
func (l *Log) Evicted() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
