package engine

import (
	"context"
	"errors"
	"time"

	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

// CompleteResult reports what one completion did. Applied is false when the
// target was unknown or already done; repeated identical calls are no-ops.
type CompleteResult struct {
	TaskID      string
	Title       string
	Applied     bool
	OnTime      bool
	XPDelta     int
	StageBefore int
	StageAfter  int
}

// SnoozeResult reports a snooze outcome. Applied is false when the target was
// unknown or already completed.
type SnoozeResult struct {
	TaskID  string
	Title   string
	Applied bool
	NewTime storage.TimeOfDay
}

// CloseoutResult reports one daily closeout. Applied is false when the day
// was already closed out.
type CloseoutResult struct {
	DayKey      string
	Applied     bool
	Total       int
	Completed   int
	Rate        float64
	Misses      int
	XPDelta     int
	StageBefore int
	StageAfter  int
}

// CompleteTask records the completion of one materialized occurrence and
// feeds the timing result to the evolution engine. Unknown or already
// completed ids are silent no-ops, keeping the action idempotent against
// races with sibling processes.
func (s *Service) CompleteTask(ctx context.Context, taskID, dayKey string) (*CompleteResult, error) {
	res := &CompleteResult{}
	err := s.update(ctx, func(state *storage.AppState) (mutation, error) {
		// Reset on every attempt: a conflict retry replays the whole cycle.
		*res = CompleteResult{TaskID: taskID}
		occ, err := Materialize(dayKey, state)
		if err != nil {
			return mutation{}, err
		}
		target := findOccurrence(occ, taskID)
		if target == nil || target.Completed {
			return mutation{}, nil
		}
		return s.applyCompletion(state, target, dayKey, res)
	})
	if err != nil {
		return journaledResult(res, err)
	}
	return res, nil
}

// CompleteNextTask completes the earliest incomplete occurrence of the day.
// With nothing left to do it is a silent no-op.
func (s *Service) CompleteNextTask(ctx context.Context, dayKey string) (*CompleteResult, error) {
	res := &CompleteResult{}
	err := s.update(ctx, func(state *storage.AppState) (mutation, error) {
		*res = CompleteResult{}
		occ, err := Materialize(dayKey, state)
		if err != nil {
			return mutation{}, err
		}
		target := NextIncomplete(occ)
		if target == nil {
			return mutation{}, nil
		}
		res.TaskID = target.ID
		return s.applyCompletion(state, target, dayKey, res)
	})
	if err != nil {
		return journaledResult(res, err)
	}
	return res, nil
}

func (s *Service) applyCompletion(state *storage.AppState, target *MaterializedTask, dayKey string, res *CompleteResult) (mutation, error) {
	now := s.now()
	onTime, err := s.isOnTime(state, target.Time, dayKey, now)
	if err != nil {
		return mutation{}, err
	}

	switch target.Origin {
	case OriginOneOff:
		task := state.OneOff(target.OriginID)
		if task == nil || task.Completed {
			return mutation{}, nil
		}
		task.Completed = true
		completedAt := now
		task.CompletedAt = &completedAt
	case OriginSeries:
		state.MarkCompleted(dayKey, target.ID)
	}

	stageBefore := state.Pet.StageIndex
	delta := s.evo.OnCheck(&state.Pet, onTime)

	res.Title = target.Title
	res.Applied = true
	res.OnTime = onTime
	res.XPDelta = delta
	res.StageBefore = stageBefore
	res.StageAfter = state.Pet.StageIndex

	mut := mutation{
		changed: true,
		events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
		entries: []storage.JournalEntry{{
			Kind:       storage.JournalKindCheck,
			TaskID:     target.ID,
			Title:      target.Title,
			DayKey:     dayKey,
			OnTime:     onTime,
			XPDelta:    delta,
			StageAfter: state.Pet.StageIndex,
			RecordedAt: now,
		}},
	}
	if state.Pet.StageIndex != stageBefore {
		mut.events = append(mut.events, Event{
			Kind:      EventStageChanged,
			DayKey:    dayKey,
			StageFrom: stageBefore,
			StageTo:   state.Pet.StageIndex,
		})
	}
	return mut, nil
}

// isOnTime checks the completion moment against the occurrence's grace
// window: [due − grace, due + grace].
func (s *Service) isOnTime(state *storage.AppState, tod storage.TimeOfDay, dayKey string, now time.Time) (bool, error) {
	due, err := timekey.DueAt(dayKey, tod.Hour, tod.Minute, s.loc)
	if err != nil {
		return false, err
	}
	grace := time.Duration(state.Grace()) * time.Minute
	return !now.Before(due.Add(-grace)) && !now.After(due.Add(grace)), nil
}

// SnoozeTask pushes one incomplete occurrence later in the same day. The new
// time never rolls past 23:59. Series occurrences get a retime override;
// one-offs are mutated directly. minutes <= 0 uses the configured default.
func (s *Service) SnoozeTask(ctx context.Context, taskID, dayKey string, minutes int) (*SnoozeResult, error) {
	res := &SnoozeResult{}
	err := s.update(ctx, func(state *storage.AppState) (mutation, error) {
		*res = SnoozeResult{TaskID: taskID}
		occ, err := Materialize(dayKey, state)
		if err != nil {
			return mutation{}, err
		}
		target := findOccurrence(occ, taskID)
		if target == nil || target.Completed {
			return mutation{}, nil
		}
		return s.applySnooze(state, target, dayKey, minutes, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SnoozeNextTask snoozes the earliest incomplete occurrence of the day.
func (s *Service) SnoozeNextTask(ctx context.Context, dayKey string, minutes int) (*SnoozeResult, error) {
	res := &SnoozeResult{}
	err := s.update(ctx, func(state *storage.AppState) (mutation, error) {
		*res = SnoozeResult{}
		occ, err := Materialize(dayKey, state)
		if err != nil {
			return mutation{}, err
		}
		target := NextIncomplete(occ)
		if target == nil {
			return mutation{}, nil
		}
		res.TaskID = target.ID
		return s.applySnooze(state, target, dayKey, minutes, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) applySnooze(state *storage.AppState, target *MaterializedTask, dayKey string, minutes int, res *SnoozeResult) (mutation, error) {
	if minutes <= 0 {
		minutes = s.snooze
	}
	newTime := clampToDay(target.Time.Minutes() + minutes)

	now := s.now()
	switch target.Origin {
	case OriginOneOff:
		task := state.OneOff(target.OriginID)
		if task == nil || task.Completed {
			return mutation{}, nil
		}
		task.Time = newTime
		snoozedAt := now
		task.SnoozedAt = &snoozedAt
	case OriginSeries:
		s.retimeSeriesOccurrence(state, target.OriginID, dayKey, newTime, now)
	}

	res.Title = target.Title
	res.Applied = true
	res.NewTime = newTime
	return mutation{
		changed: true,
		events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
	}, nil
}

// retimeSeriesOccurrence installs a retime override, carrying forward any
// title override already in effect for the pair.
func (s *Service) retimeSeriesOccurrence(state *storage.AppState, seriesID, dayKey string, tod storage.TimeOfDay, now time.Time) {
	o := storage.TaskInstanceOverride{
		ID:        newEntityID(),
		SeriesID:  seriesID,
		DayKey:    dayKey,
		Time:      &tod,
		CreatedAt: now,
	}
	if prev := state.EffectiveOverride(seriesID, dayKey); prev != nil && prev.Title != nil {
		title := *prev.Title
		o.Title = &title
	}
	state.PutOverride(o)
}

// RunDailyCloseout evaluates the day's completion rate once: ≥ 0.8 rewards,
// < 0.4 penalizes. With rollover enabled every incomplete occurrence is first
// charged as a miss. A day at or before the last closed-out day is a silent
// no-op, so the stamp never rolls backwards and no day is charged twice; a
// day with no occurrences only stamps the closeout key.
func (s *Service) RunDailyCloseout(ctx context.Context, dayKey string) (*CloseoutResult, error) {
	res := &CloseoutResult{}
	err := s.update(ctx, func(state *storage.AppState) (mutation, error) {
		*res = CloseoutResult{DayKey: dayKey}
		// Day keys are YYYY-MM-DD, so string order is calendar order.
		if state.Pet.LastCloseoutDayKey != "" && dayKey <= state.Pet.LastCloseoutDayKey {
			return mutation{}, nil
		}
		occ, err := Materialize(dayKey, state)
		if err != nil {
			return mutation{}, err
		}

		now := s.now()
		stageBefore := state.Pet.StageIndex
		var entries []storage.JournalEntry

		completed := 0
		for i := range occ {
			if occ[i].Completed {
				completed++
				continue
			}
			if state.RolloverEnabled {
				delta := s.evo.OnMiss(&state.Pet)
				res.Misses++
				res.XPDelta += delta
				entries = append(entries, storage.JournalEntry{
					Kind:       storage.JournalKindMiss,
					TaskID:     occ[i].ID,
					Title:      occ[i].Title,
					DayKey:     dayKey,
					XPDelta:    delta,
					StageAfter: state.Pet.StageIndex,
					RecordedAt: now,
				})
			}
		}

		rate := 1.0
		if len(occ) > 0 {
			rate = float64(completed) / float64(len(occ))
		}
		delta := 0
		if len(occ) > 0 {
			delta = s.evo.OnDailyCloseout(&state.Pet, rate, dayKey)
		} else {
			state.Pet.LastCloseoutDayKey = dayKey
		}

		res.Applied = true
		res.Total = len(occ)
		res.Completed = completed
		res.Rate = rate
		res.XPDelta += delta
		res.StageBefore = stageBefore
		res.StageAfter = state.Pet.StageIndex

		entries = append(entries, storage.JournalEntry{
			Kind:       storage.JournalKindCloseout,
			DayKey:     dayKey,
			XPDelta:    res.XPDelta,
			StageAfter: state.Pet.StageIndex,
			RecordedAt: now,
		})

		mut := mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
			entries: entries,
		}
		if state.Pet.StageIndex != stageBefore {
			mut.events = append(mut.events, Event{
				Kind:      EventStageChanged,
				DayKey:    dayKey,
				StageFrom: stageBefore,
				StageTo:   state.Pet.StageIndex,
			})
		}
		return mut, nil
	})
	if err != nil {
		return journaledResult(res, err)
	}
	return res, nil
}

// journaledResult keeps the result visible when the only failure was the
// history journal: the state change itself landed.
func journaledResult[T any](res *T, err error) (*T, error) {
	var jerr JournalError
	if errors.As(err, &jerr) {
		return res, err
	}
	return nil, err
}

func findOccurrence(occ []MaterializedTask, id string) *MaterializedTask {
	for i := range occ {
		if occ[i].ID == id {
			return &occ[i]
		}
	}
	return nil
}

func clampToDay(minutes int) storage.TimeOfDay {
	const lastMinute = 23*60 + 59
	if minutes > lastMinute {
		minutes = lastMinute
	}
	return storage.TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}
