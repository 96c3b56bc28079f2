package service

import (
	"context"

	"github.com/rs/zerolog"

	"accshift/internal/store"
)

// Settings is the launch-time flag snapshot the UI reads.
type Settings struct {
	OnlyGoWorkMode       bool `json:"only_go_work_mode"`
	WeatherAlertsEnabled bool `json:"weather_alerts_enabled"`
}

// SettingsService reads and toggles the session flags. Toggling weather
// alerts creates or cancels the weather-check jobs for all shifts.
type SettingsService struct {
	settings *store.SettingsRepository
	shifts   *store.ShiftRepository
	sched    *ReminderScheduler
	log      zerolog.Logger
}

func NewSettingsService(settings *store.SettingsRepository, shifts *store.ShiftRepository,
	sched *ReminderScheduler, log zerolog.Logger) *SettingsService {
	return &SettingsService{settings: settings, shifts: shifts, sched: sched, log: log}
}

func (s *SettingsService) Get(ctx context.Context) (*Settings, error) {
	mode, err := s.settings.OnlyGoWorkMode(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.settings.WeatherAlerts(ctx)
	if err != nil {
		return nil, err
	}
	return &Settings{OnlyGoWorkMode: mode, WeatherAlertsEnabled: alerts}, nil
}

// Update persists the flags. The weather jobs follow the alert flag:
// enabling schedules one per shift, disabling cancels them all. Job churn
// is best-effort, the flag write is what matters.
func (s *SettingsService) Update(ctx context.Context, in Settings) (*Settings, error) {
	if err := s.settings.SetOnlyGoWorkMode(ctx, in.OnlyGoWorkMode); err != nil {
		return nil, err
	}
	if err := s.settings.SetWeatherAlerts(ctx, in.WeatherAlertsEnabled); err != nil {
		return nil, err
	}

	shifts, err := s.shifts.All(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load shifts for weather jobs")
		return &in, nil
	}
	for _, sh := range shifts {
		if in.WeatherAlertsEnabled {
			err = s.sched.ScheduleWeatherReminder(ctx, sh)
		} else {
			err = s.sched.CancelWeatherReminder(ctx, sh.ID)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("shift", sh.ID).Msg("update weather job")
		}
	}
	return &in, nil
}
