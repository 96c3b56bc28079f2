package service

import (
	"context"
	"testing"
	"time"

	"accshift/internal/model"
	"accshift/internal/store"
)

func entriesOf(base time.Time, types ...model.EntryType) []model.LogEntry {
	var entries []model.LogEntry
	for i, typ := range types {
		entries = append(entries, model.NewLogEntry(typ, base.Add(time.Duration(i)*time.Hour), "s1"))
	}
	return entries
}

func TestDeriveDayStatus(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) // Monday
	shift := officeShift()                               // Mon–Fri
	today := "2025-03-12"

	cases := []struct {
		name     string
		date     string
		entries  []model.LogEntry
		shift    *model.ShiftConfig
		existing *model.DailyStatus
		want     model.DayStatus
	}{
		{"no logs past day", "2025-03-10", nil, shift, nil, model.StatusChuaCapNhat},
		{"no logs day off", "2025-03-09", nil, shift, nil, model.StatusNghiThuong}, // Sunday
		{"future day", "2025-03-14", nil, shift, nil, model.StatusNgayTuongLai},
		{"future day off beats future", "2025-03-15", nil, shift, nil, model.StatusNghiThuong}, // Saturday
		{"go_work only", "2025-03-10", entriesOf(base, model.EntryGoWork), shift, nil, model.StatusThieuLog},
		{"missing complete", "2025-03-10",
			entriesOf(base, model.EntryGoWork, model.EntryCheckIn, model.EntryCheckOut), shift, nil,
			model.StatusThieuLog},
		{"full day", "2025-03-10",
			entriesOf(base, model.EntryGoWork, model.EntryCheckIn, model.EntryCheckOut, model.EntryComplete), shift, nil,
			model.StatusDuCong},
		{"manual leave preserved", "2025-03-10",
			entriesOf(base, model.EntryGoWork), shift,
			&model.DailyStatus{Date: "2025-03-10", Status: model.StatusNghiPhep},
			model.StatusNghiPhep},
		{"manual leave on future date preserved", "2025-03-14", nil, shift,
			&model.DailyStatus{Date: "2025-03-14", Status: model.StatusNghiBenh},
			model.StatusNghiBenh},
		{"derived status not preserved", "2025-03-10", nil, shift,
			&model.DailyStatus{Date: "2025-03-10", Status: model.StatusDuCong},
			model.StatusChuaCapNhat},
		{"no shift no day off", "2025-03-09", nil, nil, nil, model.StatusChuaCapNhat},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := DeriveDayStatus(c.date, today, c.entries, c.shift, c.existing, time.UTC)
			if got != c.want {
				t.Fatalf("DeriveDayStatus = %s, want %s", got, c.want)
			}
		})
	}
}

func TestBuildDailyStatusDisplayFields(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 5, 0, 0, time.UTC)
	entries := []model.LogEntry{
		model.NewLogEntry(model.EntryGoWork, base.Add(-30*time.Minute), "s1"),
		model.NewLogEntry(model.EntryCheckIn, base, "s1"),
		model.NewLogEntry(model.EntryCheckOut, base.Add(9*time.Hour), "s1"),
	}
	existing := &model.DailyStatus{Date: "2025-03-10", Notes: "forgot badge"}

	record := BuildDailyStatus("2025-03-10", "2025-03-10", entries, officeShift(), existing, time.UTC)
	if record.CheckInTime != "08:05" {
		t.Fatalf("CheckInTime = %q, want 08:05", record.CheckInTime)
	}
	if record.CheckOutTime != "17:05" {
		t.Fatalf("CheckOutTime = %q, want 17:05", record.CheckOutTime)
	}
	if record.ShiftName != "Office" {
		t.Fatalf("ShiftName = %q, want Office", record.ShiftName)
	}
	if record.Notes != "forgot badge" {
		t.Fatalf("Notes = %q, want preserved", record.Notes)
	}
}

func TestLateEarlyForDay(t *testing.T) {
	shift := officeShift() // 08:00–17:00 office hours
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	late := []model.LogEntry{
		model.NewLogEntry(model.EntryCheckIn, day.Add(8*time.Hour+20*time.Minute), "s1"),
		model.NewLogEntry(model.EntryCheckOut, day.Add(16*time.Hour+30*time.Minute), "s1"),
	}
	got := LateEarlyForDay(late, shift, time.UTC)
	if !got.Late || got.LateMinutes != 20 {
		t.Fatalf("late = %+v, want Late 20min", got)
	}
	if !got.Early || got.EarlyMinutes != 30 {
		t.Fatalf("early = %+v, want Early 30min", got)
	}

	onTime := []model.LogEntry{
		model.NewLogEntry(model.EntryCheckIn, day.Add(7*time.Hour+55*time.Minute), "s1"),
		model.NewLogEntry(model.EntryCheckOut, day.Add(17*time.Hour+5*time.Minute), "s1"),
	}
	got = LateEarlyForDay(onTime, shift, time.UTC)
	if got.Late || got.Early {
		t.Fatalf("on time = %+v, want neither flag", got)
	}
}

func TestWeekStatusesPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	logs := store.NewLogRepository(kv)
	statuses := store.NewStatusRepository(kv)
	shifts := store.NewShiftRepository(kv)

	shifts.SaveAll(ctx, []*model.ShiftConfig{officeShift()})
	shifts.SetCurrent(ctx, "s1")

	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	for _, e := range entriesOf(base, model.EntryGoWork, model.EntryCheckIn, model.EntryCheckOut, model.EntryComplete) {
		logs.Append(ctx, "2025-03-10", e)
	}

	svc := NewStatusService(logs, statuses, shifts)
	svc.now = func() time.Time { return time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC) }

	week, err := svc.WeekStatuses(ctx, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("WeekStatuses: %v", err)
	}
	if len(week) != 7 {
		t.Fatalf("len(week) = %d, want 7", len(week))
	}
	if week[0].Status != model.StatusDuCong {
		t.Fatalf("Monday status = %s, want DU_CONG", week[0].Status)
	}
	if week[1].Status != model.StatusChuaCapNhat {
		t.Fatalf("Tuesday status = %s, want CHUA_CAP_NHAT", week[1].Status)
	}
	if week[4].Status != model.StatusNgayTuongLai {
		t.Fatalf("Friday status = %s, want NGAY_TUONG_LAI", week[4].Status)
	}
	if week[6].Status != model.StatusNghiThuong {
		t.Fatalf("Sunday status = %s, want NGHI_THUONG", week[6].Status)
	}

	// Derived records were persisted.
	stored, err := statuses.ForDate(ctx, "2025-03-10")
	if err != nil || stored == nil {
		t.Fatalf("stored status = %v, %v", stored, err)
	}
	if stored.Status != model.StatusDuCong {
		t.Fatalf("stored Monday status = %s, want DU_CONG", stored.Status)
	}
}

func TestSetManualStatusRejectsDerived(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	svc := NewStatusService(store.NewLogRepository(kv), store.NewStatusRepository(kv), store.NewShiftRepository(kv))

	if _, err := svc.SetManualStatus(ctx, "2025-03-10", model.StatusDuCong, ""); err == nil {
		t.Fatal("SetManualStatus(DU_CONG) succeeded, want error")
	}

	record, err := svc.SetManualStatus(ctx, "2025-03-10", model.StatusNghiPhep, "phép năm")
	if err != nil {
		t.Fatalf("SetManualStatus: %v", err)
	}
	if record.Status != model.StatusNghiPhep || record.Notes != "phép năm" {
		t.Fatalf("record = %+v", record)
	}
}
