package model

import (
	"regexp"
	"strings"
	"time"

	"accshift/internal/clock"
)

// Work-rule thresholds for shift configuration, in minutes.
const (
	MinDepartureLead = 5   // departure must precede start by at least this
	MinWorkSpan      = 120 // start to office end
	MinOvertimeGap   = 30  // office end to end, when they differ
	MaxShiftNameLen  = 200
)

// Weekday codes as stored in shift configuration.
var weekdayCodes = map[string]time.Weekday{
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
	"Sun": time.Sunday,
}

var shiftNamePattern = regexp.MustCompile(`^[\p{L}\p{N} ]+$`)

// ShiftConfig describes one configured work shift. Times are "HH:MM"
// 24-hour wall-clock strings; a shift whose end is numerically before its
// start crosses midnight.
type ShiftConfig struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DepartureTime string `json:"departure_time"`
	StartTime     string `json:"start_time"`
	OfficeEndTime string `json:"office_end_time"`
	EndTime       string `json:"end_time"`

	DaysApplied []string `json:"days_applied"` // weekday codes Mon..Sun

	ReminderBefore int `json:"reminder_before"` // minutes
	ReminderAfter  int `json:"reminder_after"`  // minutes
	BreakTime      int `json:"break_time"`      // minutes
	RoundUpMinutes int `json:"round_up_minutes"`

	ShowCheckInButton             bool `json:"show_check_in_button"`
	ShowCheckInButtonWhileWorking bool `json:"show_check_in_button_while_working"`
}

// AppliesOn reports whether the shift is active on the given weekday.
func (s *ShiftConfig) AppliesOn(day time.Weekday) bool {
	for _, code := range s.DaysApplied {
		if wd, ok := weekdayCodes[code]; ok && wd == day {
			return true
		}
	}
	return false
}

// Weekdays returns the shift's active weekdays.
func (s *ShiftConfig) Weekdays() []time.Weekday {
	var days []time.Weekday
	for _, code := range s.DaysApplied {
		if wd, ok := weekdayCodes[code]; ok {
			days = append(days, wd)
		}
	}
	return days
}

// Overnight reports whether the shift crosses midnight (end numerically
// before start).
func (s *ShiftConfig) Overnight() bool {
	start, err1 := clock.ToMinutes(s.StartTime)
	end, err2 := clock.ToMinutes(s.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}
	return end < start
}

// Validate checks all shift field rules and returns a field→message map.
// An empty map means the shift is valid. active is the set of other shifts
// the name must stay unique against; the shift itself is skipped by ID.
func (s *ShiftConfig) Validate(active []*ShiftConfig) map[string]string {
	errs := map[string]string{}

	name := strings.TrimSpace(s.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case len([]rune(name)) > MaxShiftNameLen:
		errs["name"] = "name must be at most 200 characters"
	case !shiftNamePattern.MatchString(name):
		errs["name"] = "name may only contain letters, numbers and spaces"
	default:
		for _, other := range active {
			if other.ID != s.ID && strings.EqualFold(strings.TrimSpace(other.Name), name) {
				errs["name"] = "a shift with this name already exists"
				break
			}
		}
	}

	for field, v := range map[string]string{
		"departure_time":  s.DepartureTime,
		"start_time":      s.StartTime,
		"office_end_time": s.OfficeEndTime,
		"end_time":        s.EndTime,
	} {
		if _, err := clock.ToMinutes(v); err != nil {
			errs[field] = "must be a valid HH:MM time"
		}
	}
	if len(errs) == 0 {
		if gap, _ := clock.MinutesBetween(s.DepartureTime, s.StartTime); gap < MinDepartureLead {
			errs["departure_time"] = "departure must be at least 5 minutes before start"
		}
		// End boundaries are both measured from the start so an overnight
		// wrap cannot disguise an end that precedes the office end.
		span, _ := clock.MinutesBetween(s.StartTime, s.OfficeEndTime)
		total, _ := clock.MinutesBetween(s.StartTime, s.EndTime)
		if span < MinWorkSpan {
			errs["office_end_time"] = "office end must be at least 2 hours after start"
		}
		if overtime := total - span; overtime < 0 {
			errs["end_time"] = "end must not be before office end"
		} else if overtime > 0 && overtime < MinOvertimeGap {
			errs["end_time"] = "overtime window must be at least 30 minutes"
		}
	}

	for _, code := range s.DaysApplied {
		if _, ok := weekdayCodes[code]; !ok {
			errs["days_applied"] = "unknown weekday code: " + code
			break
		}
	}

	if s.ReminderBefore < 0 {
		errs["reminder_before"] = "must not be negative"
	}
	if s.ReminderAfter < 0 {
		errs["reminder_after"] = "must not be negative"
	}
	if s.BreakTime < 0 {
		errs["break_time"] = "must not be negative"
	}
	if s.RoundUpMinutes < 0 {
		errs["round_up_minutes"] = "must not be negative"
	}

	return errs
}
