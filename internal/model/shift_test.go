package model

import (
	"testing"
	"time"
)

func validShift() *ShiftConfig {
	return &ShiftConfig{
		ID:            "s1",
		Name:          "Ca hành chính",
		DepartureTime: "07:30",
		StartTime:     "08:00",
		OfficeEndTime: "17:00",
		EndTime:       "17:30",
		DaysApplied:   []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
		ReminderAfter: 15,
	}
}

func TestShiftValidateOK(t *testing.T) {
	if errs := validShift().Validate(nil); len(errs) != 0 {
		t.Fatalf("Validate = %v, want no errors", errs)
	}
}

func TestShiftValidateFieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ShiftConfig)
		field  string
	}{
		{"empty name", func(s *ShiftConfig) { s.Name = "  " }, "name"},
		{"name pattern", func(s *ShiftConfig) { s.Name = "shift@home" }, "name"},
		{"departure too close", func(s *ShiftConfig) { s.DepartureTime = "07:56" }, "departure_time"},
		{"office end too early", func(s *ShiftConfig) { s.OfficeEndTime = "09:59" }, "office_end_time"},
		{"overtime gap too small", func(s *ShiftConfig) { s.EndTime = "17:10" }, "end_time"},
		{"end before office end", func(s *ShiftConfig) { s.EndTime = "16:00" }, "end_time"},
		{"bad time", func(s *ShiftConfig) { s.StartTime = "8 o'clock" }, "start_time"},
		{"bad weekday", func(s *ShiftConfig) { s.DaysApplied = []string{"Mon", "Xxx"} }, "days_applied"},
		{"negative reminder", func(s *ShiftConfig) { s.ReminderAfter = -1 }, "reminder_after"},
		{"negative break", func(s *ShiftConfig) { s.BreakTime = -10 }, "break_time"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := validShift()
			c.mutate(s)
			errs := s.Validate(nil)
			if errs[c.field] == "" {
				t.Fatalf("Validate = %v, want error on %q", errs, c.field)
			}
		})
	}
}

func TestShiftValidateNameUnique(t *testing.T) {
	s := validShift()
	other := validShift()
	other.ID = "s2"
	other.Name = "CA HÀNH CHÍNH" // case-insensitive collision

	if errs := s.Validate([]*ShiftConfig{other}); errs["name"] == "" {
		t.Fatalf("Validate = %v, want name uniqueness error", errs)
	}
	// A shift never collides with itself.
	if errs := s.Validate([]*ShiftConfig{s}); len(errs) != 0 {
		t.Fatalf("Validate against self = %v, want no errors", errs)
	}
}

func TestShiftValidateOvernight(t *testing.T) {
	s := validShift()
	s.StartTime = "22:00"
	s.OfficeEndTime = "06:00"
	s.EndTime = "06:30"
	s.DepartureTime = "21:30"
	if errs := s.Validate(nil); len(errs) != 0 {
		t.Fatalf("overnight shift Validate = %v, want no errors", errs)
	}
	if !s.Overnight() {
		t.Fatal("Overnight() = false, want true")
	}
}

func TestShiftAppliesOn(t *testing.T) {
	s := validShift()
	if !s.AppliesOn(time.Monday) {
		t.Fatal("AppliesOn(Monday) = false, want true")
	}
	if s.AppliesOn(time.Sunday) {
		t.Fatal("AppliesOn(Sunday) = true, want false")
	}
}
