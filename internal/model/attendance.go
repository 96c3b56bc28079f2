package model

import (
	"fmt"
	"time"
)

// EntryType classifies an attendance log entry.
type EntryType string

const (
	EntryGoWork   EntryType = "go_work"
	EntryCheckIn  EntryType = "check_in"
	EntryCheckOut EntryType = "check_out"
	EntryPunch    EntryType = "punch"
	EntryComplete EntryType = "complete"
)

// LogEntry is a single timestamped attendance event. Entries are append-only
// and scoped to a calendar day; they are never mutated in place.
type LogEntry struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Timestamp int64     `json:"timestamp"` // epoch milliseconds
	ShiftID   string    `json:"shift_id,omitempty"`
}

// NewLogEntry builds an entry stamped at t. The id is time-derived, which is
// sufficient within a single-writer session.
func NewLogEntry(typ EntryType, t time.Time, shiftID string) LogEntry {
	return LogEntry{
		ID:        fmt.Sprintf("%s_%d", typ, t.UnixMilli()),
		Type:      typ,
		Timestamp: t.UnixMilli(),
		ShiftID:   shiftID,
	}
}

// Time returns the entry timestamp as a time.Time in loc.
func (e LogEntry) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}

// ButtonState is the state of the multi-function attendance button. Exactly
// one state is active per day-session. It is always recomputed from the
// day's log (see button.Reconstruct), never trusted from storage.
type ButtonState string

const (
	StateGoWork         ButtonState = "GO_WORK"
	StateWaitingCheckIn ButtonState = "WAITING_CHECK_IN"
	StateCheckIn        ButtonState = "CHECK_IN" // transient alias of WAITING_CHECK_IN
	StateWorking        ButtonState = "WORKING"
	StateCheckOut       ButtonState = "CHECK_OUT" // transient alias of WORKING
	StateReadyComplete  ButtonState = "READY_COMPLETE"
	StateComplete       ButtonState = "COMPLETE"
	StateCompleted      ButtonState = "COMPLETED"
)

// LastStateEntry returns the most recent state-bearing entry in the day's
// log, skipping punches (informational only), or nil when none exists.
func LastStateEntry(entries []LogEntry) *LogEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type != EntryPunch {
			return &entries[i]
		}
	}
	return nil
}

// HasEntry reports whether the day's log contains an entry of the given type.
func HasEntry(entries []LogEntry, typ EntryType) bool {
	for _, e := range entries {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// LastEntryOf returns the most recent entry of the given type, or nil.
func LastEntryOf(entries []LogEntry, typ EntryType) *LogEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type == typ {
			return &entries[i]
		}
	}
	return nil
}
