package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"accshift/internal/clock"
	"accshift/internal/model"
	"accshift/internal/store"
)

// Minimum-elapsed-time gates, in minutes. Both are advisory: a press that
// trips a gate degrades to a user-confirmable override, never a hard block.
const (
	MinCheckInGapMinutes = 5   // go_work → check_in
	MinWorkingGapMinutes = 120 // check_in → check_out
)

// Decision tells the caller whether the press went through or needs the
// user's confirmation first.
type Decision string

const (
	DecisionProceed           Decision = "proceed"
	DecisionNeedsConfirmation Decision = "needs_confirmation"
)

// ConfirmReason identifies which gate a press tripped.
type ConfirmReason string

const (
	ReasonCheckInTooSoon  ConfirmReason = "check_in_too_soon"
	ReasonCheckOutTooSoon ConfirmReason = "check_out_too_soon"
)

// PressResult is the outcome of a button press. When Decision is
// needs_confirmation nothing was appended; the UI prompts and calls Confirm
// to proceed anyway.
type PressResult struct {
	Decision        Decision          `json:"decision"`
	Reason          ConfirmReason     `json:"reason,omitempty"`
	ElapsedMinutes  int               `json:"elapsed_minutes,omitempty"`
	RequiredMinutes int               `json:"required_minutes,omitempty"`
	State           model.ButtonState `json:"state"`
	Entry           *model.LogEntry   `json:"entry,omitempty"`
}

// ErrPunchUnavailable is returned when the punch action is pressed outside
// the WORKING state or without the shift flag enabling it.
var ErrPunchUnavailable = errors.New("punch is not available in the current state")

// Reconstruct derives the button state from the day's log. It is pure: the
// same entries and mode always yield the same state, regardless of anything
// stored elsewhere. Punch entries never carry state and are skipped; in
// go_work-only mode check_in/check_out entries are stray leftovers from a
// mode switch and are skipped as well.
func Reconstruct(entries []model.LogEntry, onlyGoWork bool) model.ButtonState {
	var last *model.LogEntry
	for i := len(entries) - 1; i >= 0; i-- {
		e := &entries[i]
		if e.Type == model.EntryPunch {
			continue
		}
		if onlyGoWork && (e.Type == model.EntryCheckIn || e.Type == model.EntryCheckOut) {
			continue
		}
		last = e
		break
	}
	if last == nil {
		return model.StateGoWork
	}
	switch last.Type {
	case model.EntryGoWork:
		if onlyGoWork {
			return model.StateComplete
		}
		return model.StateWaitingCheckIn
	case model.EntryCheckIn:
		return model.StateWorking
	case model.EntryCheckOut:
		return model.StateReadyComplete
	case model.EntryComplete:
		return model.StateCompleted
	}
	return model.StateGoWork
}

// ButtonService drives the multi-function attendance button. All state
// transitions go through Press/Confirm; the log append is the transition,
// reminders and session flags are best-effort side effects.
type ButtonService struct {
	logs     *store.LogRepository
	statuses *store.StatusRepository
	shifts   *store.ShiftRepository
	settings *store.SettingsRepository
	sched    *ReminderScheduler
	now      func() time.Time
	log      zerolog.Logger
}

func NewButtonService(logs *store.LogRepository, statuses *store.StatusRepository,
	shifts *store.ShiftRepository, settings *store.SettingsRepository,
	sched *ReminderScheduler, log zerolog.Logger) *ButtonService {
	return &ButtonService{
		logs:     logs,
		statuses: statuses,
		shifts:   shifts,
		settings: settings,
		sched:    sched,
		now:      time.Now,
		log:      log,
	}
}

// State reconstructs today's button state from storage. Called on every app
// start and resume so a crash mid-session cannot leave a stale state behind.
func (s *ButtonService) State(ctx context.Context) (model.ButtonState, error) {
	now := s.now()
	entries, err := s.logs.ForDate(ctx, clock.DayKey(now))
	if err != nil {
		return "", err
	}
	return Reconstruct(entries, s.onlyGoWork(ctx)), nil
}

// Press handles a press of the multi-function button. A tripped timing gate
// returns a needs_confirmation result without appending anything.
func (s *ButtonService) Press(ctx context.Context) (*PressResult, error) {
	return s.press(ctx, false)
}

// Confirm re-enters a press after the user accepted the confirmation
// prompt. The gate is overridden and the entry is appended regardless of
// elapsed time.
func (s *ButtonService) Confirm(ctx context.Context) (*PressResult, error) {
	return s.press(ctx, true)
}

func (s *ButtonService) press(ctx context.Context, force bool) (*PressResult, error) {
	now := s.now()
	date := clock.DayKey(now)

	entries, err := s.logs.ForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load today's log: %w", err)
	}
	onlyGoWork := s.onlyGoWork(ctx)
	shift := s.currentShift(ctx)
	state := Reconstruct(entries, onlyGoWork)

	shiftID := ""
	if shift != nil {
		shiftID = shift.ID
	}

	switch state {
	case model.StateGoWork:
		entry := model.NewLogEntry(model.EntryGoWork, now, shiftID)
		if onlyGoWork {
			// Mode switch cleans history: stray check_in/check_out entries
			// from the full cycle are dropped before the new go_work lands.
			kept := entries[:0:0]
			for _, e := range entries {
				if e.Type != model.EntryCheckIn && e.Type != model.EntryCheckOut {
					kept = append(kept, e)
				}
			}
			if err := s.logs.Replace(ctx, date, append(kept, entry)); err != nil {
				return nil, err
			}
			s.refreshDayStatus(ctx, date)
			return &PressResult{Decision: DecisionProceed, State: model.StateComplete, Entry: &entry}, nil
		}
		if err := s.logs.Append(ctx, date, entry); err != nil {
			return nil, err
		}
		s.refreshDayStatus(ctx, date)
		return &PressResult{Decision: DecisionProceed, State: model.StateWaitingCheckIn, Entry: &entry}, nil

	case model.StateWaitingCheckIn, model.StateCheckIn:
		if res := s.gate(entries, model.EntryGoWork, MinCheckInGapMinutes, ReasonCheckInTooSoon, now, force); res != nil {
			return res, nil
		}
		entry := model.NewLogEntry(model.EntryCheckIn, now, shiftID)
		if err := s.logs.Append(ctx, date, entry); err != nil {
			return nil, err
		}
		s.afterCheckIn(ctx, shift, now)
		s.refreshDayStatus(ctx, date)
		return &PressResult{Decision: DecisionProceed, State: model.StateWorking, Entry: &entry}, nil

	case model.StateWorking, model.StateCheckOut:
		if res := s.gate(entries, model.EntryCheckIn, MinWorkingGapMinutes, ReasonCheckOutTooSoon, now, force); res != nil {
			return res, nil
		}
		entry := model.NewLogEntry(model.EntryCheckOut, now, shiftID)
		if err := s.logs.Append(ctx, date, entry); err != nil {
			return nil, err
		}
		s.afterCheckOut(ctx, shiftID)
		s.refreshDayStatus(ctx, date)
		return &PressResult{Decision: DecisionProceed, State: model.StateReadyComplete, Entry: &entry}, nil

	case model.StateReadyComplete, model.StateComplete:
		entry := model.NewLogEntry(model.EntryComplete, now, shiftID)
		if err := s.logs.Append(ctx, date, entry); err != nil {
			return nil, err
		}
		s.afterCheckOut(ctx, shiftID)
		s.refreshDayStatus(ctx, date)
		return &PressResult{Decision: DecisionProceed, State: model.StateCompleted, Entry: &entry}, nil
	}

	// COMPLETED: the button is inert for the rest of the day.
	return &PressResult{Decision: DecisionProceed, State: model.StateCompleted}, nil
}

// gate checks the minimum-elapsed-time rule against the most recent anchor
// entry. Returns a needs_confirmation result when the rule is not satisfied
// and the caller did not force, nil otherwise.
func (s *ButtonService) gate(entries []model.LogEntry, anchor model.EntryType,
	required int, reason ConfirmReason, now time.Time, force bool) *PressResult {
	if force {
		return nil
	}
	last := model.LastEntryOf(entries, anchor)
	if last == nil {
		return nil
	}
	elapsed := int(now.Sub(time.UnixMilli(last.Timestamp)) / time.Minute)
	if elapsed >= required {
		return nil
	}
	return &PressResult{
		Decision:        DecisionNeedsConfirmation,
		Reason:          reason,
		ElapsedMinutes:  elapsed,
		RequiredMinutes: required,
		State:           Reconstruct(entries, false),
	}
}

// Punch appends an informational punch entry. Available only while WORKING
// and only when the active shift enables the auxiliary button; never changes
// the button state.
func (s *ButtonService) Punch(ctx context.Context) (*model.LogEntry, error) {
	now := s.now()
	date := clock.DayKey(now)

	entries, err := s.logs.ForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load today's log: %w", err)
	}
	shift := s.currentShift(ctx)
	if Reconstruct(entries, s.onlyGoWork(ctx)) != model.StateWorking ||
		shift == nil || !shift.ShowCheckInButtonWhileWorking {
		return nil, ErrPunchUnavailable
	}

	entry := model.NewLogEntry(model.EntryPunch, now, shift.ID)
	if err := s.logs.Append(ctx, date, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Reset clears today's log after the user confirmed the action. Entries
// under other date keys are untouched. The check-out reminder loses its
// anchor, so shift-linked jobs are cancelled and the weather check is
// rescheduled.
func (s *ButtonService) Reset(ctx context.Context) error {
	now := s.now()
	date := clock.DayKey(now)

	if err := s.logs.Clear(ctx, date); err != nil {
		return err
	}
	if err := s.settings.SetWorking(ctx, false, 0); err != nil {
		s.log.Warn().Err(err).Msg("clear working flag")
	}

	shift := s.currentShift(ctx)
	if shift != nil {
		if err := s.sched.CancelShiftReminders(ctx, shift.ID); err != nil {
			s.log.Warn().Err(err).Str("shift", shift.ID).Msg("cancel shift reminders")
		}
		if alerts, err := s.settings.WeatherAlerts(ctx); err == nil && alerts {
			if err := s.sched.ScheduleWeatherReminder(ctx, shift); err != nil {
				s.log.Warn().Err(err).Str("shift", shift.ID).Msg("reschedule weather reminder")
			}
		}
	}

	s.refreshDayStatus(ctx, date)
	return nil
}

// afterCheckIn records the working session flags and anchors the check-out
// reminder. Both are best-effort: a failure is logged and the check-in
// stands.
func (s *ButtonService) afterCheckIn(ctx context.Context, shift *model.ShiftConfig, at time.Time) {
	if err := s.settings.SetWorking(ctx, true, at.UnixMilli()); err != nil {
		s.log.Warn().Err(err).Msg("set working flag")
	}
	if shift == nil {
		return
	}
	if err := s.sched.ScheduleCheckoutReminder(ctx, shift, at); err != nil {
		s.log.Warn().Err(err).Str("shift", shift.ID).Msg("schedule check-out reminder")
	}
}

// afterCheckOut clears the session flags and the shift's reminder jobs.
func (s *ButtonService) afterCheckOut(ctx context.Context, shiftID string) {
	if err := s.settings.SetWorking(ctx, false, 0); err != nil {
		s.log.Warn().Err(err).Msg("clear working flag")
	}
	if shiftID == "" {
		return
	}
	if err := s.sched.CancelShiftReminders(ctx, shiftID); err != nil {
		s.log.Warn().Err(err).Str("shift", shiftID).Msg("cancel shift reminders")
	}
}

// refreshDayStatus re-derives and stores the day's status record after a log
// change. Best-effort: the log is the source of truth.
func (s *ButtonService) refreshDayStatus(ctx context.Context, date string) {
	entries, err := s.logs.ForDate(ctx, date)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("reload day log")
		return
	}
	existing, err := s.statuses.ForDate(ctx, date)
	if err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("load day status")
		return
	}
	record := BuildDailyStatus(date, clock.DayKey(s.now()), entries, s.currentShift(ctx), existing, s.now().Location())
	if err := s.statuses.Save(ctx, record); err != nil {
		s.log.Warn().Err(err).Str("date", date).Msg("store day status")
	}
}

func (s *ButtonService) onlyGoWork(ctx context.Context) bool {
	on, err := s.settings.OnlyGoWorkMode(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load onlyGoWorkMode")
		return false
	}
	return on
}

func (s *ButtonService) currentShift(ctx context.Context) *model.ShiftConfig {
	shift, err := s.shifts.Current(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load current shift")
		return nil
	}
	return shift
}
