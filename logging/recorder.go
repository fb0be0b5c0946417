package logging

import (
	"sync"
	"time"
)

const defaultRecorderSize = 200

// LogEntry represents a single log record with structured data.
type LogEntry struct {
	Time       time.Time              `json:"time"`
	Level      string                 `json:"level"` // "DEBUG", "INFO", "WARN", "ERROR"
	Message    string                 `json:"message"`
	Attributes map[string]interface{} `json:"attributes"` // Structured fields
}

// Recorder retains the most recent log entries (thread-safe).
type Recorder struct {
	mu      sync.RWMutex
	size    int
	entries []LogEntry // ring buffer
	next    int
	full    bool
}

// NewRecorder creates a Recorder that keeps at most size entries.
// A non-positive size uses the default of 200.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = defaultRecorderSize
	}
	return &Recorder{
		size:    size,
		entries: make([]LogEntry, size),
	}
}

// Add stores an entry, evicting the oldest one when the recorder is full.
func (r *Recorder) Add(entry LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = entry
	r.next = (r.next + 1) % r.size
	if r.next == 0 {
		r.full = true
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (r *Recorder) Entries() []LogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.full {
		result := make([]LogEntry, r.next)
		copy(result, r.entries[:r.next])
		return result
	}

	result := make([]LogEntry, 0, r.size)
	result = append(result, r.entries[r.next:]...)
	result = append(result, r.entries[:r.next]...)
	return result
}

// Len returns the number of retained entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return r.size
	}
	return r.next
}

// Clear removes all retained entries.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make([]LogEntry, r.size)
	r.next = 0
	r.full = false
}
