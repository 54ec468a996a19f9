package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

func newEntityID() string {
	return uuid.NewString()
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}

// AddOneOff creates a one-off task for a specific day.
func (s *Service) AddOneOff(ctx context.Context, title, dayKey string, tod storage.TimeOfDay) (*storage.OneOffTask, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if !tod.Valid() {
		return nil, fmt.Errorf("invalid time of day: %02d:%02d", tod.Hour, tod.Minute)
	}
	if _, err := timekey.ParseDayKey(dayKey, s.loc); err != nil {
		return nil, err
	}

	task := storage.OneOffTask{
		ID:     newEntityID(),
		Title:  t,
		Time:   tod,
		DayKey: dayKey,
	}
	err = s.update(ctx, func(state *storage.AppState) (mutation, error) {
		state.Tasks = append(state.Tasks, task)
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// AddSeries creates a recurring series active on the given 1-7 weekday
// numbers (Sunday=1).
func (s *Service) AddSeries(ctx context.Context, title string, weekdays []int, tod storage.TimeOfDay) (*storage.TaskSeries, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if !tod.Valid() {
		return nil, fmt.Errorf("invalid time of day: %02d:%02d", tod.Hour, tod.Minute)
	}
	days, err := normalizeWeekdays(weekdays)
	if err != nil {
		return nil, err
	}

	series := storage.TaskSeries{
		ID:        newEntityID(),
		Title:     t,
		Weekdays:  days,
		Time:      tod,
		Active:    true,
		CreatedAt: s.now(),
	}
	err = s.update(ctx, func(state *storage.AppState) (mutation, error) {
		state.Series = append(state.Series, series)
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: s.effectiveDayKey(state)}},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// SetSeriesActive soft-enables or soft-disables a series. Series are never
// physically removed while overrides or completions may reference them.
func (s *Service) SetSeriesActive(ctx context.Context, seriesID string, active bool) error {
	return s.update(ctx, func(state *storage.AppState) (mutation, error) {
		sr := state.SeriesByID(seriesID)
		if sr == nil {
			return mutation{}, fmt.Errorf("series %s not found", seriesID)
		}
		if sr.Active == active {
			return mutation{}, nil
		}
		sr.Active = active
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: s.effectiveDayKey(state)}},
		}, nil
	})
}

// SkipOccurrence removes a single series occurrence from one day via a
// deleted override.
func (s *Service) SkipOccurrence(ctx context.Context, seriesID, dayKey string) error {
	if _, err := timekey.ParseDayKey(dayKey, s.loc); err != nil {
		return err
	}
	return s.update(ctx, func(state *storage.AppState) (mutation, error) {
		if state.SeriesByID(seriesID) == nil {
			return mutation{}, fmt.Errorf("series %s not found", seriesID)
		}
		state.PutOverride(storage.TaskInstanceOverride{
			ID:        newEntityID(),
			SeriesID:  seriesID,
			DayKey:    dayKey,
			Deleted:   true,
			CreatedAt: s.now(),
		})
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
		}, nil
	})
}

// RetitleOccurrence renames a single series occurrence on one day, keeping
// any retime already in effect for the pair.
func (s *Service) RetitleOccurrence(ctx context.Context, seriesID, dayKey, title string) error {
	t, err := normalizeTitle(title)
	if err != nil {
		return err
	}
	if _, err := timekey.ParseDayKey(dayKey, s.loc); err != nil {
		return err
	}
	return s.update(ctx, func(state *storage.AppState) (mutation, error) {
		if state.SeriesByID(seriesID) == nil {
			return mutation{}, fmt.Errorf("series %s not found", seriesID)
		}
		o := storage.TaskInstanceOverride{
			ID:        newEntityID(),
			SeriesID:  seriesID,
			DayKey:    dayKey,
			Title:     &t,
			CreatedAt: s.now(),
		}
		if prev := state.EffectiveOverride(seriesID, dayKey); prev != nil && prev.Time != nil {
			tod := *prev.Time
			o.Time = &tod
		}
		state.PutOverride(o)
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
		}, nil
	})
}

// RetimeOccurrence moves a single series occurrence on one day, keeping any
// retitle already in effect for the pair.
func (s *Service) RetimeOccurrence(ctx context.Context, seriesID, dayKey string, tod storage.TimeOfDay) error {
	if !tod.Valid() {
		return fmt.Errorf("invalid time of day: %02d:%02d", tod.Hour, tod.Minute)
	}
	if _, err := timekey.ParseDayKey(dayKey, s.loc); err != nil {
		return err
	}
	return s.update(ctx, func(state *storage.AppState) (mutation, error) {
		if state.SeriesByID(seriesID) == nil {
			return mutation{}, fmt.Errorf("series %s not found", seriesID)
		}
		s.retimeSeriesOccurrence(state, seriesID, dayKey, tod, s.now())
		return mutation{
			changed: true,
			events:  []Event{{Kind: EventRefreshNeeded, DayKey: dayKey}},
		}, nil
	})
}

func normalizeWeekdays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, errors.New("at least one weekday is required")
	}
	seen := map[int]bool{}
	var out []int
	for _, d := range days {
		if d < 1 || d > 7 {
			return nil, fmt.Errorf("invalid weekday %d (want 1-7, Sunday=1)", d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}
