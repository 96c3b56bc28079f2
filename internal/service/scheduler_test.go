package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"accshift/internal/model"
	"accshift/internal/notify"
	"accshift/internal/store"
)

func newScheduler(t *testing.T, now time.Time) (*ReminderScheduler, *notify.Registry, *store.MemoryStore) {
	t.Helper()
	kv := store.NewMemoryStore()
	reg := notify.NewRegistry(nullNotifier{})
	s := NewReminderScheduler(reg, store.NewShiftRepository(kv), store.NewNoteRepository(kv),
		store.NewSettingsRepository(kv), zerolog.New(io.Discard))
	s.now = func() time.Time { return now }
	return s, reg, kv
}

func TestCheckoutReminderComputation(t *testing.T) {
	// End 17:30, reminderAfter 15, check-in 08:05 ⇒ reminder at 17:15.
	now := time.Date(2025, 3, 10, 8, 5, 0, 0, time.UTC)
	s, reg, _ := newScheduler(t, now)

	if err := s.ScheduleCheckoutReminder(context.Background(), officeShift(), now); err != nil {
		t.Fatalf("ScheduleCheckoutReminder: %v", err)
	}

	live := reg.Live("shift_s1")
	if len(live) != 1 {
		t.Fatalf("live jobs = %d, want 1", len(live))
	}
	want := time.Date(2025, 3, 10, 17, 15, 0, 0, time.UTC)
	if !live[0].At.Equal(want) {
		t.Fatalf("reminder at %v, want %v", live[0].At, want)
	}
}

func TestCheckoutReminderSkippedWhenPassed(t *testing.T) {
	now := time.Date(2025, 3, 10, 17, 20, 0, 0, time.UTC)
	s, reg, _ := newScheduler(t, now)

	// Window 17:15 is already behind a 17:20 check-in: silently skipped.
	if err := s.ScheduleCheckoutReminder(context.Background(), officeShift(), now); err != nil {
		t.Fatalf("ScheduleCheckoutReminder: %v", err)
	}
	if live := reg.Live("shift_s1"); len(live) != 0 {
		t.Fatalf("live jobs = %d, want 0", len(live))
	}
}

func TestCheckoutReminderOvernightShift(t *testing.T) {
	now := time.Date(2025, 3, 10, 22, 10, 0, 0, time.UTC)
	s, reg, _ := newScheduler(t, now)

	shift := officeShift()
	shift.StartTime = "22:00"
	shift.OfficeEndTime = "06:00"
	shift.EndTime = "06:30"
	shift.ReminderAfter = 15

	if err := s.ScheduleCheckoutReminder(context.Background(), shift, now); err != nil {
		t.Fatalf("ScheduleCheckoutReminder: %v", err)
	}
	live := reg.Live("shift_s1")
	if len(live) != 1 {
		t.Fatalf("live jobs = %d, want 1", len(live))
	}
	// End rolls to the next calendar day.
	want := time.Date(2025, 3, 11, 6, 15, 0, 0, time.UTC)
	if !live[0].At.Equal(want) {
		t.Fatalf("reminder at %v, want %v", live[0].At, want)
	}
}

func TestCheckoutReminderIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 5, 0, 0, time.UTC)
	s, reg, _ := newScheduler(t, now)
	ctx := context.Background()

	if err := s.ScheduleCheckoutReminder(ctx, officeShift(), now); err != nil {
		t.Fatalf("first schedule: %v", err)
	}
	if err := s.ScheduleCheckoutReminder(ctx, officeShift(), now); err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if live := reg.Live("shift_s1"); len(live) != 1 {
		t.Fatalf("live jobs after double schedule = %d, want 1", len(live))
	}
}

func TestNoteRemindersLinkedShiftUnion(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // Monday noon
	s, reg, kv := newScheduler(t, now)
	ctx := context.Background()

	shifts := store.NewShiftRepository(kv)
	dayShift := officeShift() // Mon–Fri
	nightShift := &model.ShiftConfig{ID: "s2", Name: "Weekend", DaysApplied: []string{"Sat", "Sun"}}
	if err := shifts.SaveAll(ctx, []*model.ShiftConfig{dayShift, nightShift}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	note := &model.Note{
		ID:             "n1",
		Title:          "Nộp báo cáo",
		ReminderTime:   "09:00",
		LinkedShiftIDs: []string{"s1", "s2"},
		ReminderDays:   []string{"Wed"}, // ignored while shifts are linked
	}
	if err := s.ScheduleNoteReminders(ctx, note); err != nil {
		t.Fatalf("ScheduleNoteReminders: %v", err)
	}

	live := reg.Live("note_n1")
	if len(live) != 7 {
		t.Fatalf("live note jobs = %d, want 7 (Mon–Fri ∪ Sat–Sun)", len(live))
	}
	for _, job := range live {
		if !job.Repeats {
			t.Fatalf("note job %s not repeating", job.ID)
		}
		if !job.At.After(now) {
			t.Fatalf("note job %s scheduled in the past: %v", job.ID, job.At)
		}
		if job.At.Weekday() != job.Weekday {
			t.Fatalf("note job %s at %v does not fall on %s", job.ID, job.At, job.Weekday)
		}
	}
}

func TestNoteRemindersFullReplace(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	s, reg, _ := newScheduler(t, now)
	ctx := context.Background()

	note := &model.Note{ID: "n1", Title: "Note", ReminderTime: "09:00", ReminderDays: []string{"Mon", "Wed", "Fri"}}
	if err := s.ScheduleNoteReminders(ctx, note); err != nil {
		t.Fatalf("ScheduleNoteReminders: %v", err)
	}
	if live := reg.Live("note_n1"); len(live) != 3 {
		t.Fatalf("live jobs = %d, want 3", len(live))
	}

	// Edit shrinks the weekday set: the old set is fully replaced.
	note.ReminderDays = []string{"Tue"}
	if err := s.ScheduleNoteReminders(ctx, note); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	live := reg.Live("note_n1")
	if len(live) != 1 {
		t.Fatalf("live jobs after edit = %d, want 1", len(live))
	}
	if live[0].Weekday != time.Tuesday {
		t.Fatalf("kept weekday = %s, want Tuesday", live[0].Weekday)
	}

	// Removing the reminder time drops every job.
	note.ReminderTime = ""
	if err := s.ScheduleNoteReminders(ctx, note); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if live := reg.Live("note_n1"); len(live) != 0 {
		t.Fatalf("live jobs after clear = %d, want 0", len(live))
	}
}

func TestWeatherReminderRollsToTomorrow(t *testing.T) {
	ctx := context.Background()

	// 06:00: one hour before an 08:00 start is 07:00, still ahead.
	s, reg, _ := newScheduler(t, time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC))
	if err := s.ScheduleWeatherReminder(ctx, officeShift()); err != nil {
		t.Fatalf("ScheduleWeatherReminder: %v", err)
	}
	live := reg.Live("weather_s1")
	if len(live) != 1 {
		t.Fatalf("live jobs = %d, want 1", len(live))
	}
	if want := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC); !live[0].At.Equal(want) {
		t.Fatalf("weather reminder at %v, want %v", live[0].At, want)
	}

	// 09:00: today's 07:00 has passed, same clock time tomorrow.
	s, reg, _ = newScheduler(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	if err := s.ScheduleWeatherReminder(ctx, officeShift()); err != nil {
		t.Fatalf("ScheduleWeatherReminder: %v", err)
	}
	live = reg.Live("weather_s1")
	if want := time.Date(2025, 3, 11, 7, 0, 0, 0, time.UTC); !live[0].At.Equal(want) {
		t.Fatalf("weather reminder at %v, want %v", live[0].At, want)
	}
}

func TestResyncRebuildsJobs(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	s, reg, kv := newScheduler(t, now)
	ctx := context.Background()

	store.NewShiftRepository(kv).SaveAll(ctx, []*model.ShiftConfig{officeShift()})
	store.NewNoteRepository(kv).SaveAll(ctx, []*model.Note{
		{ID: "n1", Title: "Note", ReminderTime: "09:00", ReminderDays: []string{"Mon"}},
	})
	store.NewSettingsRepository(kv).SetWeatherAlerts(ctx, true)

	if err := s.Resync(ctx); err != nil {
		t.Fatalf("Resync: %v", err)
	}
	if err := s.Resync(ctx); err != nil {
		t.Fatalf("second Resync: %v", err)
	}

	if live := reg.Live("note_n1"); len(live) != 1 {
		t.Fatalf("note jobs = %d, want 1", len(live))
	}
	if live := reg.Live("weather_s1"); len(live) != 1 {
		t.Fatalf("weather jobs = %d, want 1", len(live))
	}
}
