package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"accshift/internal/model"
)

const (
	keyShifts       = "shifts"
	keyCurrentShift = "currentShiftId"
	keyNotes        = "notes"

	keyOnlyGoWork    = "onlyGoWorkMode"
	keyIsWorking     = "isWorking"
	keyWorkStart     = "workStartTime"
	keyWeatherAlerts = "weatherAlertsEnabled"
)

// ShiftRepository stores the configured shifts and the active-shift pointer.
type ShiftRepository struct {
	kv KeyValueStore
}

func NewShiftRepository(kv KeyValueStore) *ShiftRepository {
	return &ShiftRepository{kv: kv}
}

func (r *ShiftRepository) All(ctx context.Context) ([]*model.ShiftConfig, error) {
	raw, err := r.kv.Get(ctx, keyShifts)
	if err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var shifts []*model.ShiftConfig
	if err := json.Unmarshal([]byte(raw), &shifts); err != nil {
		return nil, fmt.Errorf("decode shifts: %w", err)
	}
	return shifts, nil
}

func (r *ShiftRepository) SaveAll(ctx context.Context, shifts []*model.ShiftConfig) error {
	data, err := json.Marshal(shifts)
	if err != nil {
		return fmt.Errorf("encode shifts: %w", err)
	}
	if err := r.kv.Set(ctx, keyShifts, string(data)); err != nil {
		return fmt.Errorf("store shifts: %w", err)
	}
	return nil
}

// ByID returns the shift with the given id, or nil when absent.
func (r *ShiftRepository) ByID(ctx context.Context, id string) (*model.ShiftConfig, error) {
	shifts, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range shifts {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

// Current returns the active shift, or nil when none is selected.
func (r *ShiftRepository) Current(ctx context.Context) (*model.ShiftConfig, error) {
	id, err := r.kv.Get(ctx, keyCurrentShift)
	if err != nil {
		return nil, fmt.Errorf("load current shift id: %w", err)
	}
	if id == "" {
		return nil, nil
	}
	return r.ByID(ctx, id)
}

func (r *ShiftRepository) SetCurrent(ctx context.Context, id string) error {
	if id == "" {
		return r.kv.Remove(ctx, keyCurrentShift)
	}
	return r.kv.Set(ctx, keyCurrentShift, id)
}

// NoteRepository stores user notes.
type NoteRepository struct {
	kv KeyValueStore
}

func NewNoteRepository(kv KeyValueStore) *NoteRepository {
	return &NoteRepository{kv: kv}
}

func (r *NoteRepository) All(ctx context.Context) ([]*model.Note, error) {
	raw, err := r.kv.Get(ctx, keyNotes)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var notes []*model.Note
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) SaveAll(ctx context.Context, notes []*model.Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	if err := r.kv.Set(ctx, keyNotes, string(data)); err != nil {
		return fmt.Errorf("store notes: %w", err)
	}
	return nil
}

// SettingsRepository stores the small session flags the UI reads at launch.
type SettingsRepository struct {
	kv KeyValueStore
}

func NewSettingsRepository(kv KeyValueStore) *SettingsRepository {
	return &SettingsRepository{kv: kv}
}

func (r *SettingsRepository) OnlyGoWorkMode(ctx context.Context) (bool, error) {
	return r.getBool(ctx, keyOnlyGoWork)
}

func (r *SettingsRepository) SetOnlyGoWorkMode(ctx context.Context, on bool) error {
	return r.kv.Set(ctx, keyOnlyGoWork, strconv.FormatBool(on))
}

func (r *SettingsRepository) WeatherAlerts(ctx context.Context) (bool, error) {
	return r.getBool(ctx, keyWeatherAlerts)
}

func (r *SettingsRepository) SetWeatherAlerts(ctx context.Context, on bool) error {
	return r.kv.Set(ctx, keyWeatherAlerts, strconv.FormatBool(on))
}

// SetWorking records the working flag and, when starting, the work start
// instant (epoch milliseconds).
func (r *SettingsRepository) SetWorking(ctx context.Context, working bool, startMillis int64) error {
	if err := r.kv.Set(ctx, keyIsWorking, strconv.FormatBool(working)); err != nil {
		return err
	}
	if !working {
		return r.kv.Remove(ctx, keyWorkStart)
	}
	return r.kv.Set(ctx, keyWorkStart, strconv.FormatInt(startMillis, 10))
}

func (r *SettingsRepository) getBool(ctx context.Context, key string) (bool, error) {
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}
