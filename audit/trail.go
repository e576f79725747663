// Package audit provides the append-only change log attached to mutable
// entities. It replaces the legacy scheme of serializing history to a JSON
// blob and re-parsing it on every mutation with a typed, ordered log.
package audit

import "time"

// Entry is one immutable record of a single change. A creation entry carries
// Action; a field change carries Field with the old and new values.
type Entry struct {
	At        time.Time
	ChangedBy string
	Action    string
	Field     string
	OldValue  any
	NewValue  any
}

// Trail is an ordered sequence of entries. Entry order equals causal order;
// entry 0 is always the creation event.
type Trail struct {
	entries []Entry
}

// NewTrail seeds a trail with its creation entry.
func NewTrail(changedBy, action string, at time.Time) Trail {
	return Trail{entries: []Entry{{
		At:        at,
		ChangedBy: changedBy,
		Action:    action,
	}}}
}

// AppendChange records a field mutation.
func (t *Trail) AppendChange(changedBy, field string, oldValue, newValue any, at time.Time) {
	t.entries = append(t.entries, Entry{
		At:        at,
		ChangedBy: changedBy,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
}

// Len returns the number of entries.
func (t *Trail) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the log so callers cannot rewrite history.
func (t *Trail) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the most recent entry. The boolean is false only for a
// zero-value trail, which no owned entity should ever expose.
func (t *Trail) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
