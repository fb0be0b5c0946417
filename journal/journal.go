// Package journal records the outcome of store operations in memory.
//
// The journal is the history behind the store's diagnostics: every gateway
// call the store makes is opened with Begin and closed with Finish. Only the
// most recent records are kept.
//
// # Example
//
//	j := journal.NewMemoryJournal(100)
//	rec := j.Begin(journal.OpCreate, a.ID, "")
//	err := gateway.Create(ctx, a)
//	j.Finish(rec, err)
//
//	for _, r := range j.Records() { // Most recent first
//	    fmt.Println(r.Operation, r.State(), r.Error)
//	}
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxRecords = 100

// Operation names a store operation that talks to the API.
type Operation string

const (
	OpLoadAll Operation = "load_all"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
)

// Record describes one store operation.
type Record struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`
	// Operation is the store operation performed.
	Operation Operation `json:"operation"`
	// ActivityID is the activity the operation acted on. Empty for load_all.
	ActivityID string `json:"activity_id,omitempty"`
	// Target is the UI element that invoked a delete.
	Target string `json:"target,omitempty"`
	// StartedAt is when the operation started.
	StartedAt time.Time `json:"started_at"`
	// EndedAt is when the operation finished. Nil while in flight.
	EndedAt *time.Time `json:"ended_at,omitempty"`
	// Error is the failure message. Empty on success.
	Error string `json:"error,omitempty"`
}

// State reports whether the record is pending, succeeded or failed.
func (r Record) State() string {
	switch {
	case r.EndedAt == nil:
		return "pending"
	case r.Error != "":
		return "failed"
	default:
		return "succeeded"
	}
}

// Duration returns how long the operation took, or zero while pending.
func (r Record) Duration() time.Duration {
	if r.EndedAt == nil {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// MemoryJournal keeps the most recent records in memory only.
type MemoryJournal struct {
	maxRecords int

	mu      sync.Mutex
	records []*Record // most recent first
}

// NewMemoryJournal creates a journal holding at most maxRecords records.
// A non-positive maxRecords uses the default of 100.
func NewMemoryJournal(maxRecords int) *MemoryJournal {
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	return &MemoryJournal{
		maxRecords: maxRecords,
		records:    make([]*Record, 0),
	}
}

// Begin opens a record for an operation that is about to start.
func (j *MemoryJournal) Begin(op Operation, activityID, target string) *Record {
	rec := &Record{
		ID:         uuid.NewString(),
		Operation:  op,
		ActivityID: activityID,
		Target:     target,
		StartedAt:  time.Now(),
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	// Prepend to keep most recent first
	j.records = append([]*Record{rec}, j.records...)
	if len(j.records) > j.maxRecords {
		j.records = j.records[:j.maxRecords]
	}
	return rec
}

// Finish closes a record. A nil err marks the operation as succeeded.
func (j *MemoryJournal) Finish(rec *Record, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	rec.EndedAt = &now
	if err != nil {
		rec.Error = err.Error()
	}
}

// Records returns copies of all retained records, most recent first.
func (j *MemoryJournal) Records() []Record {
	j.mu.Lock()
	defer j.mu.Unlock()

	result := make([]Record, len(j.records))
	for i, rec := range j.records {
		result[i] = copyRecord(rec)
	}
	return result
}

// Last returns the most recently started record.
func (j *MemoryJournal) Last() (Record, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if len(j.records) == 0 {
		return Record{}, false
	}
	return copyRecord(j.records[0]), true
}

func copyRecord(rec *Record) Record {
	c := *rec
	if rec.EndedAt != nil {
		ended := *rec.EndedAt
		c.EndedAt = &ended
	}
	return c
}
