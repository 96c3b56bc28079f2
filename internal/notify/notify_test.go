package notify

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

// recorder is a Notifier that just records calls.
type recorder struct {
	mu        sync.Mutex
	scheduled []Job
	cancelled []string
}

func (r *recorder) ScheduleAt(_ context.Context, job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, job)
	return nil
}

func (r *recorder) Cancel(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *recorder) CancelAll(context.Context) error { return nil }

func TestRegistryScheduleReplacesSameID(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	reg := NewRegistry(rec)

	job := Job{ID: "shift_s1_checkout", At: time.Now().Add(time.Hour)}
	if err := reg.Schedule(ctx, job); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := reg.Schedule(ctx, job); err != nil {
		t.Fatalf("Schedule again: %v", err)
	}

	if got := len(reg.Live("shift_s1")); got != 1 {
		t.Fatalf("live jobs = %d, want 1", got)
	}
	if len(rec.cancelled) != 1 || rec.cancelled[0] != "shift_s1_checkout" {
		t.Fatalf("cancelled = %v, want the replaced id", rec.cancelled)
	}
}

func TestRegistryCancelByPrefix(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	reg := NewRegistry(rec)

	at := time.Now().Add(time.Hour)
	for _, id := range []string{"note_n1_1", "note_n1_3", "note_n2_1", "weather_s1"} {
		if err := reg.Schedule(ctx, Job{ID: id, At: at}); err != nil {
			t.Fatalf("Schedule %s: %v", id, err)
		}
	}

	if err := reg.CancelByPrefix(ctx, "note_n1"); err != nil {
		t.Fatalf("CancelByPrefix: %v", err)
	}

	sort.Strings(rec.cancelled)
	want := []string{"note_n1_1", "note_n1_3"}
	if len(rec.cancelled) != 2 || rec.cancelled[0] != want[0] || rec.cancelled[1] != want[1] {
		t.Fatalf("cancelled = %v, want %v", rec.cancelled, want)
	}
	if got := len(reg.Live("")); got != 2 {
		t.Fatalf("live jobs = %d, want 2", got)
	}
}

func TestLocalNotifierFiresAndRepeats(t *testing.T) {
	fired := make(chan Job, 2)
	n := NewLocalNotifier(func(job Job) { fired <- job }, testLogger())

	job := Job{ID: "j1", At: time.Now().Add(5 * time.Millisecond)}
	if err := n.ScheduleAt(context.Background(), job); err != nil {
		t.Fatalf("ScheduleAt: %v", err)
	}

	select {
	case got := <-fired:
		if got.ID != "j1" {
			t.Fatalf("fired %q, want j1", got.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("job never fired")
	}

	n.mu.Lock()
	_, rearmed := n.timers["j1"]
	n.mu.Unlock()
	if rearmed {
		t.Fatal("non-repeating job left an armed timer")
	}
}

func TestLocalNotifierCancel(t *testing.T) {
	fired := make(chan Job, 1)
	n := NewLocalNotifier(func(job Job) { fired <- job }, testLogger())
	ctx := context.Background()

	if err := n.ScheduleAt(ctx, Job{ID: "j1", At: time.Now().Add(50 * time.Millisecond)}); err != nil {
		t.Fatalf("ScheduleAt: %v", err)
	}
	if err := n.Cancel(ctx, "j1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	select {
	case <-fired:
		t.Fatal("cancelled job fired")
	case <-time.After(120 * time.Millisecond):
	}
}
