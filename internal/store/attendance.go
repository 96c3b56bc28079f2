package store

import (
	"context"
	"encoding/json"
	"fmt"

	"accshift/internal/model"
)

// Storage key conventions. Core logic never builds these strings itself;
// it goes through the typed repositories below.
const (
	keyLogsPrefix   = "attendanceLogs_"
	keyStatusPrefix = "dailyWorkStatus_"
)

// LogRepository stores the append-only attendance log, one bucket per
// calendar day keyed by local date.
type LogRepository struct {
	kv KeyValueStore
}

func NewLogRepository(kv KeyValueStore) *LogRepository {
	return &LogRepository{kv: kv}
}

// ForDate returns the day's entries in append order. A missing bucket is an
// empty day, not an error.
func (r *LogRepository) ForDate(ctx context.Context, date string) ([]model.LogEntry, error) {
	raw, err := r.kv.Get(ctx, keyLogsPrefix+date)
	if err != nil {
		return nil, fmt.Errorf("load logs %s: %w", date, err)
	}
	if raw == "" {
		return nil, nil
	}
	var entries []model.LogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode logs %s: %w", date, err)
	}
	return entries, nil
}

// Append adds one entry to the day's bucket.
func (r *LogRepository) Append(ctx context.Context, date string, entry model.LogEntry) error {
	entries, err := r.ForDate(ctx, date)
	if err != nil {
		return err
	}
	return r.Replace(ctx, date, append(entries, entry))
}

// Replace overwrites the day's bucket wholesale. Used by the go_work-only
// mode switch, which filters stray check_in/check_out entries.
func (r *LogRepository) Replace(ctx context.Context, date string, entries []model.LogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode logs %s: %w", date, err)
	}
	if err := r.kv.Set(ctx, keyLogsPrefix+date, string(data)); err != nil {
		return fmt.Errorf("store logs %s: %w", date, err)
	}
	return nil
}

// Clear removes the day's bucket. Buckets for other dates are untouched.
func (r *LogRepository) Clear(ctx context.Context, date string) error {
	if err := r.kv.Remove(ctx, keyLogsPrefix+date); err != nil {
		return fmt.Errorf("clear logs %s: %w", date, err)
	}
	return nil
}

// StatusRepository stores the derived per-day status records.
type StatusRepository struct {
	kv KeyValueStore
}

func NewStatusRepository(kv KeyValueStore) *StatusRepository {
	return &StatusRepository{kv: kv}
}

// ForDate returns the stored status for a date, or nil when none exists.
func (r *StatusRepository) ForDate(ctx context.Context, date string) (*model.DailyStatus, error) {
	raw, err := r.kv.Get(ctx, keyStatusPrefix+date)
	if err != nil {
		return nil, fmt.Errorf("load status %s: %w", date, err)
	}
	if raw == "" {
		return nil, nil
	}
	var st model.DailyStatus
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decode status %s: %w", date, err)
	}
	return &st, nil
}

// Save overwrites the status record for its date.
func (r *StatusRepository) Save(ctx context.Context, st *model.DailyStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode status %s: %w", st.Date, err)
	}
	if err := r.kv.Set(ctx, keyStatusPrefix+st.Date, string(data)); err != nil {
		return fmt.Errorf("store status %s: %w", st.Date, err)
	}
	return nil
}

// ForDates fetches status records for several dates at once; dates with no
// record are simply absent from the result.
func (r *StatusRepository) ForDates(ctx context.Context, dates []string) (map[string]*model.DailyStatus, error) {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = keyStatusPrefix + d
	}
	values, err := r.kv.MultiGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load statuses: %w", err)
	}
	out := make(map[string]*model.DailyStatus, len(values))
	for i, d := range dates {
		raw, ok := values[keys[i]]
		if !ok {
			continue
		}
		var st model.DailyStatus
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("decode status %s: %w", d, err)
		}
		out[d] = &st
	}
	return out, nil
}
