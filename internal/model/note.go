package model

import (
	"strings"
	"time"

	"accshift/internal/clock"
)

// Note field limits.
const (
	MaxNoteTitleLen = 100
	MaxNoteBodyLen  = 300
)

// Note is a user note with an optional time-of-day reminder. When linked to
// shifts, the reminder repeats on the union of the linked shifts' applied
// weekdays; otherwise ReminderDays picks the weekdays directly.
type Note struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	ReminderTime   string   `json:"reminder_time,omitempty"` // "HH:MM", empty = no reminder
	ReminderDays   []string `json:"reminder_days,omitempty"` // weekday codes, used when no linked shifts
	LinkedShiftIDs []string `json:"linked_shift_ids,omitempty"`
	UpdatedAt      int64    `json:"updated_at"` // epoch milliseconds
}

// ReminderWeekdays resolves the weekdays the note reminder repeats on. With
// linked shifts present, it is the union of their applied days; otherwise the
// note's own ReminderDays.
func (n *Note) ReminderWeekdays(shifts []*ShiftConfig) []time.Weekday {
	seen := map[time.Weekday]bool{}
	var days []time.Weekday
	add := func(wd time.Weekday) {
		if !seen[wd] {
			seen[wd] = true
			days = append(days, wd)
		}
	}

	if len(n.LinkedShiftIDs) > 0 {
		for _, id := range n.LinkedShiftIDs {
			for _, s := range shifts {
				if s.ID == id {
					for _, wd := range s.Weekdays() {
						add(wd)
					}
				}
			}
		}
		return days
	}

	for _, code := range n.ReminderDays {
		if wd, ok := weekdayCodes[code]; ok {
			add(wd)
		}
	}
	return days
}

// Validate checks note field rules and returns a field→message map.
func (n *Note) Validate() map[string]string {
	errs := map[string]string{}

	title := strings.TrimSpace(n.Title)
	switch {
	case title == "":
		errs["title"] = "title is required"
	case len([]rune(title)) > MaxNoteTitleLen:
		errs["title"] = "title must be at most 100 characters"
	}
	if len([]rune(n.Body)) > MaxNoteBodyLen {
		errs["body"] = "content must be at most 300 characters"
	}

	if n.ReminderTime != "" {
		if _, err := clock.ToMinutes(n.ReminderTime); err != nil {
			errs["reminder_time"] = "must be a valid HH:MM time"
		}
		if len(n.LinkedShiftIDs) == 0 && len(n.ReminderDays) == 0 {
			errs["reminder_days"] = "pick at least one weekday or link a shift"
		}
	}
	for _, code := range n.ReminderDays {
		if _, ok := weekdayCodes[code]; !ok {
			errs["reminder_days"] = "unknown weekday code: " + code
			break
		}
	}
	return errs
}
