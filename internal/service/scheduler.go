package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"accshift/internal/clock"
	"accshift/internal/i18n"
	"accshift/internal/model"
	"accshift/internal/notify"
	"accshift/internal/store"
)

// Reminder job id conventions. Everything owned by one shift or note shares
// an id prefix so the owner's jobs can be cancelled in bulk.
func shiftJobPrefix(shiftID string) string { return "shift_" + shiftID }
func checkoutJobID(shiftID string) string  { return "shift_" + shiftID + "_checkout" }
func noteJobPrefix(noteID string) string   { return "note_" + noteID }
func noteJobID(noteID string, day time.Weekday) string {
	return fmt.Sprintf("note_%s_%d", noteID, int(day))
}
func weatherJobID(shiftID string) string { return "weather_" + shiftID }

// weatherLeadMinutes is how long before shift start the weather-check
// reminder fires.
const weatherLeadMinutes = 60

// ReminderScheduler computes absolute trigger times for check-out, note and
// weather-check reminders and keeps at most one live job per occurrence.
// Callers cancel by owner prefix before re-creating, so re-running any
// scheduling routine never accumulates duplicates.
type ReminderScheduler struct {
	jobs     *notify.Registry
	shifts   *store.ShiftRepository
	notes    *store.NoteRepository
	settings *store.SettingsRepository
	now      func() time.Time
	log      zerolog.Logger
}

func NewReminderScheduler(jobs *notify.Registry, shifts *store.ShiftRepository,
	notes *store.NoteRepository, settings *store.SettingsRepository, log zerolog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		jobs:     jobs,
		shifts:   shifts,
		notes:    notes,
		settings: settings,
		now:      time.Now,
		log:      log,
	}
}

// ScheduleCheckoutReminder schedules the end-of-shift reminder computed at
// check-in time: shift end (next calendar day for overnight shifts) minus
// reminderAfter minutes. A window that has already passed is skipped
// silently.
func (s *ReminderScheduler) ScheduleCheckoutReminder(ctx context.Context, shift *model.ShiftConfig, checkInAt time.Time) error {
	if err := s.jobs.CancelByPrefix(ctx, shiftJobPrefix(shift.ID)); err != nil {
		return fmt.Errorf("cancel shift reminders: %w", err)
	}

	end, err := clock.CombineDateAndTime(checkInAt, shift.EndTime)
	if err != nil {
		return fmt.Errorf("shift end time: %w", err)
	}
	if shift.Overnight() {
		end = end.AddDate(0, 0, 1)
	}
	reminderAt := end.Add(-time.Duration(shift.ReminderAfter) * time.Minute)

	if !reminderAt.After(s.now()) {
		s.log.Debug().Str("shift", shift.ID).Time("at", reminderAt).
			Msg("check-out reminder window already passed, skipping")
		return nil
	}

	return s.jobs.Schedule(ctx, notify.Job{
		ID:    checkoutJobID(shift.ID),
		At:    reminderAt,
		Title: i18n.T(ctx, "reminder.checkout.title"),
		Body: i18n.T(ctx, "reminder.checkout.body", map[string]any{
			"Shift": shift.Name,
			"End":   shift.EndTime,
		}),
		Data: map[string]string{"shift_id": shift.ID},
	})
}

// CancelShiftReminders removes every live job owned by the shift (check-out
// reminders; weather jobs live under their own prefix and survive).
func (s *ReminderScheduler) CancelShiftReminders(ctx context.Context, shiftID string) error {
	return s.jobs.CancelByPrefix(ctx, shiftJobPrefix(shiftID))
}

// ScheduleNoteReminders replaces the note's full job set: one weekly
// repeating job per reminder weekday. With linked shifts the weekdays are
// the union of their applied days; otherwise the note's own day picks.
func (s *ReminderScheduler) ScheduleNoteReminders(ctx context.Context, note *model.Note) error {
	if err := s.jobs.CancelByPrefix(ctx, noteJobPrefix(note.ID)); err != nil {
		return fmt.Errorf("cancel note reminders: %w", err)
	}
	if note.ReminderTime == "" {
		return nil
	}

	shifts, err := s.shifts.All(ctx)
	if err != nil {
		return fmt.Errorf("load shifts: %w", err)
	}

	for _, wd := range note.ReminderWeekdays(shifts) {
		at, err := s.nextWeekdayOccurrence(note.ReminderTime, wd)
		if err != nil {
			return fmt.Errorf("note %s reminder time: %w", note.ID, err)
		}
		job := notify.Job{
			ID:      noteJobID(note.ID, wd),
			At:      at,
			Repeats: true,
			Weekday: wd,
			Title:   i18n.T(ctx, "reminder.note.title", map[string]any{"Title": note.Title}),
			Body:    note.Body,
			Data:    map[string]string{"note_id": note.ID},
		}
		if err := s.jobs.Schedule(ctx, job); err != nil {
			return fmt.Errorf("schedule note reminder: %w", err)
		}
	}
	return nil
}

// CancelNoteReminders removes every live job owned by the note.
func (s *ReminderScheduler) CancelNoteReminders(ctx context.Context, noteID string) error {
	return s.jobs.CancelByPrefix(ctx, noteJobPrefix(noteID))
}

// ScheduleWeatherReminder schedules the weather-check reminder one hour
// before shift start, rolling to the same clock time tomorrow when today's
// instant has passed.
func (s *ReminderScheduler) ScheduleWeatherReminder(ctx context.Context, shift *model.ShiftConfig) error {
	if err := s.jobs.CancelByPrefix(ctx, weatherJobID(shift.ID)); err != nil {
		return fmt.Errorf("cancel weather reminder: %w", err)
	}

	now := s.now()
	start, err := clock.CombineDateAndTime(now, shift.StartTime)
	if err != nil {
		return fmt.Errorf("shift start time: %w", err)
	}
	at := start.Add(-weatherLeadMinutes * time.Minute)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}

	return s.jobs.Schedule(ctx, notify.Job{
		ID:    weatherJobID(shift.ID),
		At:    at,
		Title: i18n.T(ctx, "reminder.weather.title"),
		Body: i18n.T(ctx, "reminder.weather.body", map[string]any{
			"Shift": shift.Name,
			"Start": shift.StartTime,
		}),
		Data: map[string]string{"shift_id": shift.ID},
	})
}

// CancelWeatherReminder removes the shift's weather-check job.
func (s *ReminderScheduler) CancelWeatherReminder(ctx context.Context, shiftID string) error {
	return s.jobs.CancelByPrefix(ctx, weatherJobID(shiftID))
}

// Resync rebuilds note and weather jobs from storage. Run at startup; the
// cancel-before-create contract makes it safe to run any number of times.
func (s *ReminderScheduler) Resync(ctx context.Context) error {
	notes, err := s.notes.All(ctx)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	for _, n := range notes {
		if err := s.ScheduleNoteReminders(ctx, n); err != nil {
			s.log.Warn().Err(err).Str("note", n.ID).Msg("resync note reminders")
		}
	}

	alerts, err := s.settings.WeatherAlerts(ctx)
	if err != nil {
		return fmt.Errorf("load weather alert setting: %w", err)
	}
	if !alerts {
		return nil
	}
	shifts, err := s.shifts.All(ctx)
	if err != nil {
		return fmt.Errorf("load shifts: %w", err)
	}
	for _, sh := range shifts {
		if err := s.ScheduleWeatherReminder(ctx, sh); err != nil {
			s.log.Warn().Err(err).Str("shift", sh.ID).Msg("resync weather reminder")
		}
	}
	return nil
}

// nextWeekdayOccurrence finds the next instant at hhmm falling on wd,
// strictly after now.
func (s *ReminderScheduler) nextWeekdayOccurrence(hhmm string, wd time.Weekday) (time.Time, error) {
	at, err := clock.NextOccurrence(s.now(), hhmm)
	if err != nil {
		return time.Time{}, err
	}
	for at.Weekday() != wd {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}
