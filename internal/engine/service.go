// Package engine implements the task materialization + completion engine and
// the pet evolution state machine over the shared persisted aggregate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

// DefaultSnoozeMinutes is applied when a snooze request carries no duration.
const DefaultSnoozeMinutes = 15

// saveRetries bounds how often a read-modify-write cycle is replayed when a
// sibling process saved underneath us.
const saveRetries = 3

// JournalError reports that the state mutation was applied and saved but the
// history journal could not record it. Callers should warn, not fail.
type JournalError struct {
	Err error
}

func (e JournalError) Error() string {
	return fmt.Sprintf("journal: %v", e.Err)
}

func (e JournalError) Unwrap() error { return e.Err }

// ServiceConfig carries the optional collaborators a Service is wired with.
// Zero values fall back to sane defaults.
type ServiceConfig struct {
	Journal       *storage.Journal
	Location      *time.Location
	Now           func() time.Time
	Sink          Sink
	SnoozeMinutes int
}

// Service orchestrates every operation exposed to external callers. The
// store handle, stage table, clock, and event sink are injected; the Service
// never retains an AppState between calls.
type Service struct {
	store   *storage.Store
	stages  *Stages
	evo     *Evolution
	journal *storage.Journal
	loc     *time.Location
	now     func() time.Time
	sink    Sink
	snooze  int
}

func NewService(store *storage.Store, stages *Stages, cfg ServiceConfig) *Service {
	s := &Service{
		store:   store,
		stages:  stages,
		evo:     NewEvolution(stages),
		journal: cfg.Journal,
		loc:     cfg.Location,
		now:     cfg.Now,
		sink:    cfg.Sink,
		snooze:  cfg.SnoozeMinutes,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sink == nil {
		s.sink = NopSink
	}
	if s.snooze <= 0 {
		s.snooze = DefaultSnoozeMinutes
	}
	return s
}

// Stages returns the validated stage table.
func (s *Service) Stages() *Stages { return s.stages }

// Location returns the timezone every day key is computed in.
func (s *Service) Location() *time.Location { return s.loc }

// TodayKey returns the effective day key for the current moment, honoring a
// configured reset time: before it, the previous calendar day is still open.
func (s *Service) TodayKey() (string, error) {
	state, _, err := s.loadOrDefault()
	if err != nil {
		return "", err
	}
	return s.effectiveDayKey(state), nil
}

func (s *Service) effectiveDayKey(state *storage.AppState) string {
	if state.ResetTime != nil && state.ResetTime.Valid() {
		return timekey.EffectiveDayKey(s.now(), s.loc, state.ResetTime.Hour, state.ResetTime.Minute, true)
	}
	return timekey.DayKey(s.now(), s.loc)
}

// Snapshot loads the aggregate for read-only use, supplying a first-run
// default when nothing is persisted yet. The boolean reports whether corrupt
// state was replaced in memory (not yet persisted).
func (s *Service) Snapshot() (*storage.AppState, bool, error) {
	return s.loadOrDefault()
}

// ListToday materializes the occurrences of the effective current day.
func (s *Service) ListToday() ([]MaterializedTask, string, error) {
	state, _, err := s.loadOrDefault()
	if err != nil {
		return nil, "", err
	}
	dayKey := s.effectiveDayKey(state)
	occ, err := Materialize(dayKey, state)
	if err != nil {
		return nil, "", err
	}
	return occ, dayKey, nil
}

// ListDay materializes the occurrences of an arbitrary day key.
func (s *Service) ListDay(dayKey string) ([]MaterializedTask, error) {
	state, _, err := s.loadOrDefault()
	if err != nil {
		return nil, err
	}
	return Materialize(dayKey, state)
}

// loadOrDefault loads the aggregate, mapping first-run and corrupt states to
// a fresh default. A corrupt file is reported via the reset flag; the default
// carries the on-disk write stamp so a later save replaces the corrupt file
// instead of failing the conflict check. A persisted stage index outside the
// configured stage table is fatal here, never mid-transition.
func (s *Service) loadOrDefault() (*storage.AppState, bool, error) {
	state, err := s.store.Load()
	switch {
	case err == nil:
		if cerr := s.stages.CheckIndex(state.Pet.StageIndex); cerr != nil {
			return nil, false, fmt.Errorf("persisted pet state: %w", cerr)
		}
		return state, false, nil
	case errors.Is(err, storage.ErrNotFound):
		return storage.NewAppState(timekey.DayKey(s.now(), s.loc)), false, nil
	case errors.Is(err, storage.ErrCorrupt):
		fresh := storage.NewAppState(timekey.DayKey(s.now(), s.loc))
		fresh.WriteStamp = s.store.Stamp()
		return fresh, true, nil
	default:
		return nil, false, err
	}
}

// mutation is what one transaction wants persisted and announced.
type mutation struct {
	changed bool
	events  []Event
	entries []storage.JournalEntry
}

// update runs one read-modify-write cycle against the shared file, retrying
// the whole cycle on cross-process conflicts. Events are emitted and journal
// rows appended only after the save landed.
func (s *Service) update(ctx context.Context, fn func(state *storage.AppState) (mutation, error)) error {
	var lastErr error
	for attempt := 0; attempt < saveRetries; attempt++ {
		state, reset, err := s.loadOrDefault()
		if err != nil {
			return err
		}

		mut, err := fn(state)
		if err != nil {
			return err
		}
		if !mut.changed && !reset {
			return nil
		}

		state.DayKey = s.effectiveDayKey(state)
		if err := s.store.Save(state); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}

		if reset {
			s.sink.Emit(Event{Kind: EventStateReset, DayKey: state.DayKey})
		}
		for _, e := range mut.events {
			s.sink.Emit(e)
		}
		if s.journal != nil {
			for _, entry := range mut.entries {
				if err := s.journal.Append(ctx, entry); err != nil {
					return JournalError{Err: err}
				}
			}
		}
		return nil
	}
	return lastErr
}
