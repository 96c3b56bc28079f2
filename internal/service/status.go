package service

import (
	"context"
	"fmt"
	"time"

	"accshift/internal/clock"
	"accshift/internal/model"
	"accshift/internal/store"
)

// DeriveDayStatus maps a day's log and shift configuration to one status
// value. Priority: an existing manual status always wins; a weekday outside
// the shift's applied days is a regular day off before any not-updated or
// future default; future dates default to NGAY_TUONG_LAI; then the log
// decides.
func DeriveDayStatus(date, today string, entries []model.LogEntry,
	shift *model.ShiftConfig, existing *model.DailyStatus, loc *time.Location) model.DayStatus {
	if existing != nil && existing.Status.Manual() {
		return existing.Status
	}

	if len(entries) > 0 && date <= today {
		full := model.HasEntry(entries, model.EntryGoWork) &&
			model.HasEntry(entries, model.EntryCheckIn) &&
			model.HasEntry(entries, model.EntryCheckOut)
		if full && model.HasEntry(entries, model.EntryComplete) {
			return model.StatusDuCong
		}
		return model.StatusThieuLog
	}

	if shift != nil && len(shift.DaysApplied) > 0 {
		if d, err := clock.ParseDayKey(date, loc); err == nil && !shift.AppliesOn(d.Weekday()) {
			return model.StatusNghiThuong
		}
	}

	if date > today {
		return model.StatusNgayTuongLai
	}
	return model.StatusChuaCapNhat
}

// BuildDailyStatus assembles the cached status record for a date: derived
// status, display check-in/out times, shift name. Manual notes on the
// existing record are preserved.
func BuildDailyStatus(date, today string, entries []model.LogEntry,
	shift *model.ShiftConfig, existing *model.DailyStatus, loc *time.Location) *model.DailyStatus {
	record := &model.DailyStatus{
		Date:   date,
		Status: DeriveDayStatus(date, today, entries, shift, existing, loc),
	}
	if shift != nil {
		record.ShiftName = shift.Name
	}
	if existing != nil {
		record.Notes = existing.Notes
	}
	if in := model.LastEntryOf(entries, model.EntryCheckIn); in != nil {
		record.CheckInTime = clock.FormatClock(in.Time(loc))
	}
	if out := model.LastEntryOf(entries, model.EntryCheckOut); out != nil {
		record.CheckOutTime = clock.FormatClock(out.Time(loc))
	}
	return record
}

// LateEarly is the statistics-screen comparison of actual check-in/out
// against the shift boundaries. It is display-only and never feeds back
// into the stored day status (those late/early statuses stay manual).
type LateEarly struct {
	Late         bool `json:"late"`
	Early        bool `json:"early"`
	LateMinutes  int  `json:"late_minutes,omitempty"`
	EarlyMinutes int  `json:"early_minutes,omitempty"`
}

// LateEarlyForDay compares the first check-in against startTime and the
// last check-out against officeEndTime.
func LateEarlyForDay(entries []model.LogEntry, shift *model.ShiftConfig, loc *time.Location) LateEarly {
	var result LateEarly
	if shift == nil {
		return result
	}

	var firstIn *model.LogEntry
	for i := range entries {
		if entries[i].Type == model.EntryCheckIn {
			firstIn = &entries[i]
			break
		}
	}
	if firstIn != nil {
		if mins, err := clock.MinutesBetween(shift.StartTime, clock.FormatClock(firstIn.Time(loc))); err == nil {
			// A wrapped delta close to a full day means the check-in was
			// before start, not 23 hours late.
			if mins > 0 && mins < clock.MinutesPerDay/2 {
				result.Late = true
				result.LateMinutes = mins
			}
		}
	}

	if lastOut := model.LastEntryOf(entries, model.EntryCheckOut); lastOut != nil {
		if mins, err := clock.MinutesBetween(clock.FormatClock(lastOut.Time(loc)), shift.OfficeEndTime); err == nil {
			if mins > 0 && mins < clock.MinutesPerDay/2 {
				result.Early = true
				result.EarlyMinutes = mins
			}
		}
	}
	return result
}

// StatusService derives and caches the weekly status grid.
type StatusService struct {
	logs     *store.LogRepository
	statuses *store.StatusRepository
	shifts   *store.ShiftRepository
	now      func() time.Time
}

func NewStatusService(logs *store.LogRepository, statuses *store.StatusRepository,
	shifts *store.ShiftRepository) *StatusService {
	return &StatusService{logs: logs, statuses: statuses, shifts: shifts, now: time.Now}
}

// WeekStatuses derives and persists the status records for the seven days
// starting at weekStart.
func (s *StatusService) WeekStatuses(ctx context.Context, weekStart time.Time) ([]*model.DailyStatus, error) {
	today := clock.DayKey(s.now())
	loc := s.now().Location()

	shift, err := s.shifts.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current shift: %w", err)
	}

	dates := make([]string, 7)
	for i := range dates {
		dates[i] = clock.DayKey(weekStart.AddDate(0, 0, i))
	}
	existing, err := s.statuses.ForDates(ctx, dates)
	if err != nil {
		return nil, err
	}

	out := make([]*model.DailyStatus, 0, 7)
	for _, date := range dates {
		entries, err := s.logs.ForDate(ctx, date)
		if err != nil {
			return nil, err
		}
		record := BuildDailyStatus(date, today, entries, shift, existing[date], loc)
		if err := s.statuses.Save(ctx, record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// SetManualStatus records a user-set day status (leave, sick, holiday,
// absent, late, early). Only manual statuses may be set this way; derived
// ones are owned by the log.
func (s *StatusService) SetManualStatus(ctx context.Context, date string, status model.DayStatus, notes string) (*model.DailyStatus, error) {
	if !status.Manual() {
		return nil, fmt.Errorf("status %s cannot be set manually", status)
	}
	if _, err := clock.ParseDayKey(date, s.now().Location()); err != nil {
		return nil, err
	}

	record, err := s.statuses.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &model.DailyStatus{Date: date}
	}
	record.Status = status
	record.Notes = notes
	if err := s.statuses.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// LateEarlyStats computes the statistics-screen late/early flags for one
// date.
func (s *StatusService) LateEarlyStats(ctx context.Context, date string) (LateEarly, error) {
	entries, err := s.logs.ForDate(ctx, date)
	if err != nil {
		return LateEarly{}, err
	}
	shift, err := s.shifts.Current(ctx)
	if err != nil {
		return LateEarly{}, err
	}
	return LateEarlyForDay(entries, shift, s.now().Location()), nil
}
