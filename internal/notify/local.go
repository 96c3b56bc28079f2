package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink receives a notification when its trigger time arrives.
type Sink func(job Job)

// LocalNotifier is an in-process Notifier backed by timers. Weekly repeating
// jobs re-arm themselves for the same wall-clock time seven days later. A
// job that fails to fire is not retried.
type LocalNotifier struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	sink   Sink
	log    zerolog.Logger
}

func NewLocalNotifier(sink Sink, log zerolog.Logger) *LocalNotifier {
	n := &LocalNotifier{
		timers: map[string]*time.Timer{},
		sink:   sink,
		log:    log,
	}
	if n.sink == nil {
		n.sink = func(job Job) {
			log.Info().Str("job", job.ID).Str("title", job.Title).Msg("notification fired")
		}
	}
	return n
}

func (n *LocalNotifier) ScheduleAt(_ context.Context, job Job) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[job.ID]; ok {
		t.Stop()
	}
	n.arm(job)
	return nil
}

// arm must be called with the mutex held.
func (n *LocalNotifier) arm(job Job) {
	delay := time.Until(job.At)
	if delay < 0 {
		delay = 0
	}
	n.timers[job.ID] = time.AfterFunc(delay, func() { n.fire(job) })
}

func (n *LocalNotifier) fire(job Job) {
	n.sink(job)

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.timers[job.ID]; !ok {
		return // cancelled between trigger and fire
	}
	if job.Repeats {
		job.At = job.At.AddDate(0, 0, 7)
		n.arm(job)
		return
	}
	delete(n.timers, job.ID)
}

func (n *LocalNotifier) Cancel(_ context.Context, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	return nil
}

func (n *LocalNotifier) CancelAll(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, t := range n.timers {
		t.Stop()
		delete(n.timers, id)
	}
	return nil
}
