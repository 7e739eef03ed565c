package observability

import (
	"time"
)

// DefaultBufferCapacity is the operation log capacity used when none is configured.
const DefaultBufferCapacity = 50

// OperationRecord is one structured entry in a request's operation log.
// Records are immutable once appended.
type OperationRecord struct {
	Type           string         `json:"type"`
	Details        map[string]any `json:"details"`
	Timestamp      time.Time      `json:"timestamp"`
	DurationMs     *float64       `json:"duration_ms,omitempty"`
	BufferPosition int            `json:"buffer_position"`
}

// OperationLog is a fixed-capacity, FIFO-evicting sequence of OperationRecords
// owned by exactly one in-flight request. It carries no locking: the lifecycle
// middleware guarantees a single owner, so concurrent access never happens.
type OperationLog struct {
	capacity int
	records  []OperationRecord
}

// NewOperationLog creates an operation log with the given capacity.
// Non-positive capacities fall back to DefaultBufferCapacity.
func NewOperationLog(capacity int) *OperationLog {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &OperationLog{
		capacity: capacity,
		records:  make([]OperationRecord, 0, capacity),
	}
}

// Append inserts a record, evicting the oldest one first when the log is full.
// BufferPosition is stamped as the index the record lands at; after an eviction
// it reflects position-at-insertion, not a stable sequence number.
func (l *OperationLog) Append(rec OperationRecord) {
	if len(l.records) == l.capacity {
		copy(l.records, l.records[1:])
		l.records = l.records[:len(l.records)-1]
	}
	rec.BufferPosition = len(l.records)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	l.records = append(l.records, rec)
}

// Flush returns all records in insertion order and empties the log.
// A second Flush returns an empty slice.
func (l *OperationLog) Flush() []OperationRecord {
	out := l.records
	l.records = make([]OperationRecord, 0, l.capacity)
	return out
}

// Clear empties the log without returning its contents. Used on the success
// path so operation history for healthy requests is never retained.
func (l *OperationLog) Clear() {
	l.records = l.records[:0]
}

// Peek returns the current contents without mutating the log.
func (l *OperationLog) Peek() []OperationRecord {
	out := make([]OperationRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Size returns the current record count.
func (l *OperationLog) Size() int {
	return len(l.records)
}

// Capacity returns the fixed maximum record count.
func (l *OperationLog) Capacity() int {
	return l.capacity
}
