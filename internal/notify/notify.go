// Package notify models the local notification primitive the reminder
// scheduler drives. The underlying primitive only supports schedule-at,
// cancel-by-exact-id and cancel-all; Registry layers id tracking on top to
// provide the cancel-by-prefix the scheduler needs.
package notify

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Job is one scheduled notification.
type Job struct {
	ID      string
	At      time.Time
	Repeats bool         // weekly repeat on Weekday
	Weekday time.Weekday // meaningful only when Repeats
	Title   string
	Body    string
	Data    map[string]string
}

// Notifier is the schedule-at/cancel primitive.
type Notifier interface {
	ScheduleAt(ctx context.Context, job Job) error
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) error
}

// Registry wraps a Notifier and tracks live job ids so owners can be
// cancelled in bulk by id prefix. Scheduling an id that is already live
// replaces the previous job.
type Registry struct {
	mu sync.Mutex
	n  Notifier
	// live ids; values carry the job for introspection in tests and resync
	jobs map[string]Job
}

func NewRegistry(n Notifier) *Registry {
	return &Registry{n: n, jobs: map[string]Job{}}
}

// Schedule registers the job with the primitive, replacing any live job with
// the same id first.
func (r *Registry) Schedule(ctx context.Context, job Job) error {
	r.mu.Lock()
	_, exists := r.jobs[job.ID]
	r.mu.Unlock()

	if exists {
		if err := r.n.Cancel(ctx, job.ID); err != nil {
			return err
		}
	}
	if err := r.n.ScheduleAt(ctx, job); err != nil {
		return err
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	return nil
}

// CancelByPrefix cancels every live job whose id starts with prefix.
func (r *Registry) CancelByPrefix(ctx context.Context, prefix string) error {
	r.mu.Lock()
	var ids []string
	for id := range r.jobs {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	for _, id := range ids {
		if err := r.n.Cancel(ctx, id); err != nil {
			return err
		}
		r.mu.Lock()
		delete(r.jobs, id)
		r.mu.Unlock()
	}
	return nil
}

// CancelAll cancels everything, both in the primitive and in the registry.
func (r *Registry) CancelAll(ctx context.Context) error {
	if err := r.n.CancelAll(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	r.jobs = map[string]Job{}
	r.mu.Unlock()
	return nil
}

// Live returns the ids of all live jobs matching prefix, in no particular
// order. An empty prefix matches everything.
func (r *Registry) Live(prefix string) []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	var jobs []Job
	for id, job := range r.jobs {
		if strings.HasPrefix(id, prefix) {
			jobs = append(jobs, job)
		}
	}
	return jobs
}
