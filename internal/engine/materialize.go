package engine

import (
	"sort"

	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

// Materialize produces the ordered occurrence list for one day: one-off tasks
// owned by the day, then occurrences of every active series whose weekday set
// matches, with per-day overrides applied. Pure and side-effect-free; callers
// may invoke it repeatedly and concurrently over the same state.
func Materialize(dayKey string, state *storage.AppState) ([]MaterializedTask, error) {
	weekday, err := timekey.Weekday(dayKey)
	if err != nil {
		return nil, err
	}

	var out []MaterializedTask
	for i := range state.Tasks {
		t := &state.Tasks[i]
		if t.DayKey != dayKey {
			continue
		}
		out = append(out, MaterializedTask{
			ID:        t.ID,
			Origin:    OriginOneOff,
			OriginID:  t.ID,
			Title:     t.Title,
			Time:      t.Time,
			Completed: t.Completed,
		})
	}

	for i := range state.Series {
		sr := &state.Series[i]
		if !sr.ActiveOn(weekday) {
			continue
		}
		title := sr.Title
		tod := sr.Time
		if o := state.EffectiveOverride(sr.ID, dayKey); o != nil {
			if o.Deleted {
				continue
			}
			if o.Title != nil {
				title = *o.Title
			}
			if o.Time != nil {
				tod = *o.Time
			}
		}
		id := InstanceID(sr.ID, dayKey)
		out = append(out, MaterializedTask{
			ID:        id,
			Origin:    OriginSeries,
			OriginID:  sr.ID,
			Title:     title,
			Time:      tod,
			Completed: state.IsCompleted(dayKey, id),
		})
	}

	// Ascending by time of day; ties keep insertion order (one-offs before
	// series occurrences, then catalog order) so identical input yields
	// identical output.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Minutes() < out[j].Time.Minutes()
	})
	return out, nil
}

// NextIncomplete returns the earliest incomplete occurrence of the day, or
// nil when everything is done.
func NextIncomplete(occurrences []MaterializedTask) *MaterializedTask {
	for i := range occurrences {
		if !occurrences[i].Completed {
			return &occurrences[i]
		}
	}
	return nil
}
