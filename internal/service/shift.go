package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"accshift/internal/model"
	"accshift/internal/store"
)

// ShiftService manages shift configurations and keeps their reminder jobs
// in step with edits. Validation failures come back as a field→message map;
// the caller decides whether to block the save.
type ShiftService struct {
	shifts   *store.ShiftRepository
	settings *store.SettingsRepository
	sched    *ReminderScheduler
	log      zerolog.Logger
}

func NewShiftService(shifts *store.ShiftRepository, settings *store.SettingsRepository,
	sched *ReminderScheduler, log zerolog.Logger) *ShiftService {
	return &ShiftService{shifts: shifts, settings: settings, sched: sched, log: log}
}

func (s *ShiftService) List(ctx context.Context) ([]*model.ShiftConfig, error) {
	return s.shifts.All(ctx)
}

// Save creates or updates a shift. A non-empty field-error map means the
// shift was not persisted.
func (s *ShiftService) Save(ctx context.Context, shift *model.ShiftConfig) (map[string]string, error) {
	existing, err := s.shifts.All(ctx)
	if err != nil {
		return nil, err
	}
	if errs := shift.Validate(existing); len(errs) > 0 {
		return errs, nil
	}

	if shift.ID == "" {
		shift.ID = bson.NewObjectID().Hex()
		existing = append(existing, shift)
	} else {
		replaced := false
		for i, other := range existing {
			if other.ID == shift.ID {
				existing[i] = shift
				replaced = true
				break
			}
		}
		if !replaced {
			return nil, fmt.Errorf("shift %s not found", shift.ID)
		}
	}
	if err := s.shifts.SaveAll(ctx, existing); err != nil {
		return nil, err
	}

	// Shift boundaries moved; the weather check is re-anchored. Best-effort.
	if alerts, err := s.settings.WeatherAlerts(ctx); err == nil && alerts {
		if err := s.sched.ScheduleWeatherReminder(ctx, shift); err != nil {
			s.log.Warn().Err(err).Str("shift", shift.ID).Msg("reschedule weather reminder")
		}
	}
	return nil, nil
}

// Delete removes a shift and every reminder job it owns. The active-shift
// pointer is cleared when it referenced the deleted shift.
func (s *ShiftService) Delete(ctx context.Context, id string) error {
	existing, err := s.shifts.All(ctx)
	if err != nil {
		return err
	}
	kept := existing[:0:0]
	for _, sh := range existing {
		if sh.ID != id {
			kept = append(kept, sh)
		}
	}
	if len(kept) == len(existing) {
		return fmt.Errorf("shift %s not found", id)
	}
	if err := s.shifts.SaveAll(ctx, kept); err != nil {
		return err
	}

	current, err := s.shifts.Current(ctx)
	if err == nil && current != nil && current.ID == id {
		if err := s.shifts.SetCurrent(ctx, ""); err != nil {
			s.log.Warn().Err(err).Msg("clear current shift")
		}
	}

	if err := s.sched.CancelShiftReminders(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("shift", id).Msg("cancel shift reminders")
	}
	if err := s.sched.CancelWeatherReminder(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("shift", id).Msg("cancel weather reminder")
	}
	return nil
}

// Activate makes the shift with the given id the active one.
func (s *ShiftService) Activate(ctx context.Context, id string) error {
	shift, err := s.shifts.ByID(ctx, id)
	if err != nil {
		return err
	}
	if shift == nil {
		return fmt.Errorf("shift %s not found", id)
	}
	return s.shifts.SetCurrent(ctx, id)
}
