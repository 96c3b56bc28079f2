package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"accshift/internal/model"
	"accshift/internal/store"
)

// NoteService manages notes and their repeating reminders. Every save fully
// replaces the note's reminder job set (cancel by prefix, then re-create).
type NoteService struct {
	notes *store.NoteRepository
	sched *ReminderScheduler
	now   func() time.Time
	log   zerolog.Logger
}

func NewNoteService(notes *store.NoteRepository, sched *ReminderScheduler, log zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, sched: sched, now: time.Now, log: log}
}

func (s *NoteService) List(ctx context.Context) ([]*model.Note, error) {
	return s.notes.All(ctx)
}

// Save creates or updates a note. A non-empty field-error map means the
// note was not persisted.
func (s *NoteService) Save(ctx context.Context, note *model.Note) (map[string]string, error) {
	if errs := note.Validate(); len(errs) > 0 {
		return errs, nil
	}

	existing, err := s.notes.All(ctx)
	if err != nil {
		return nil, err
	}
	note.UpdatedAt = s.now().UnixMilli()

	if note.ID == "" {
		note.ID = bson.NewObjectID().Hex()
		existing = append(existing, note)
	} else {
		replaced := false
		for i, other := range existing {
			if other.ID == note.ID {
				existing[i] = note
				replaced = true
				break
			}
		}
		if !replaced {
			return nil, fmt.Errorf("note %s not found", note.ID)
		}
	}
	if err := s.notes.SaveAll(ctx, existing); err != nil {
		return nil, err
	}

	if err := s.sched.ScheduleNoteReminders(ctx, note); err != nil {
		s.log.Warn().Err(err).Str("note", note.ID).Msg("schedule note reminders")
	}
	return nil, nil
}

// Delete removes a note and cancels its reminder jobs.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	existing, err := s.notes.All(ctx)
	if err != nil {
		return err
	}
	kept := existing[:0:0]
	for _, n := range existing {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(existing) {
		return fmt.Errorf("note %s not found", id)
	}
	if err := s.notes.SaveAll(ctx, kept); err != nil {
		return err
	}
	if err := s.sched.CancelNoteReminders(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("note", id).Msg("cancel note reminders")
	}
	return nil
}
