package storage

import (
	"fmt"
	"time"
)

// SchemaVersion is the current persisted-state schema. Older files are
// migrated in place on load.
const SchemaVersion = 3

// DefaultGraceMinutes is the on-time window applied when the state carries no
// explicit setting.
const DefaultGraceMinutes = 60

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// Minutes returns the offset from midnight, the sort key for occurrences.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TaskSeries is a recurring task template active on a set of weekdays
// (1-7, Sunday=1). Series are soft-disabled via Active, never removed while
// overrides or completions may still reference them.
type TaskSeries struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Weekdays  []int     `json:"weekdays"`
	Time      TimeOfDay `json:"time"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActiveOn reports whether the series has an occurrence on the given
// 1-7 weekday number.
func (s TaskSeries) ActiveOn(weekday int) bool {
	if !s.Active {
		return false
	}
	for _, d := range s.Weekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

// OneOffTask is a single task owned by one specific day. Completion is
// terminal and idempotent.
type OneOffTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Time        TimeOfDay  `json:"time"`
	DayKey      string     `json:"dayKey"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	SnoozedAt   *time.Time `json:"snoozedAt,omitempty"`
}

// TaskInstanceOverride is a per-day exception to one series occurrence:
// retime, retitle, or skip. At most one effective override exists per
// (series, dayKey) pair; writing a new one supersedes the old.
type TaskInstanceOverride struct {
	ID        string     `json:"id"`
	SeriesID  string     `json:"seriesId"`
	DayKey    string     `json:"dayKey"`
	Title     *string    `json:"title,omitempty"`
	Time      *TimeOfDay `json:"time,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PetState is the evolution state machine's persisted state. Mutated only by
// the evolution engine.
type PetState struct {
	StageIndex         int    `json:"stageIndex"`
	StageXP            int    `json:"stageXP"`
	LastCloseoutDayKey string `json:"lastCloseoutDayKey,omitempty"`
}

// AppState is the single persisted aggregate shared by the main app and any
// out-of-process extension. All other entities are reachable only through it.
type AppState struct {
	SchemaVersion   int                    `json:"schemaVersion"`
	WriteStamp      string                 `json:"writeStamp,omitempty"`
	DayKey          string                 `json:"dayKey"`
	Tasks           []OneOffTask           `json:"tasks"`
	Pet             PetState               `json:"pet"`
	Series          []TaskSeries           `json:"series"`
	Overrides       []TaskInstanceOverride `json:"overrides"`
	Completions     map[string][]string    `json:"completions"`
	RolloverEnabled bool                   `json:"rolloverEnabled"`
	GraceMinutes    *int                   `json:"graceMinutes,omitempty"`
	ResetTime       *TimeOfDay             `json:"resetTime,omitempty"`
}

// NewAppState returns the first-run aggregate.
func NewAppState(dayKey string) *AppState {
	return &AppState{
		SchemaVersion: SchemaVersion,
		DayKey:        dayKey,
		Completions:   map[string][]string{},
	}
}

// Grace returns the effective on-time window in minutes.
func (s *AppState) Grace() int {
	if s.GraceMinutes != nil && *s.GraceMinutes >= 0 {
		return *s.GraceMinutes
	}
	return DefaultGraceMinutes
}

// OneOff returns the one-off task with the given id, or nil.
func (s *AppState) OneOff(id string) *OneOffTask {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// SeriesByID returns the series with the given id, or nil.
func (s *AppState) SeriesByID(id string) *TaskSeries {
	for i := range s.Series {
		if s.Series[i].ID == id {
			return &s.Series[i]
		}
	}
	return nil
}

// EffectiveOverride returns the non-superseded override for a (series, day)
// pair. Later entries supersede earlier ones.
func (s *AppState) EffectiveOverride(seriesID, dayKey string) *TaskInstanceOverride {
	var found *TaskInstanceOverride
	for i := range s.Overrides {
		o := &s.Overrides[i]
		if o.SeriesID == seriesID && o.DayKey == dayKey {
			found = o
		}
	}
	return found
}

// PutOverride installs an override, removing any previous override for the
// same (series, day) pair.
func (s *AppState) PutOverride(o TaskInstanceOverride) {
	kept := s.Overrides[:0]
	for _, existing := range s.Overrides {
		if existing.SeriesID == o.SeriesID && existing.DayKey == o.DayKey {
			continue
		}
		kept = append(kept, existing)
	}
	s.Overrides = append(kept, o)
}

// IsCompleted reports whether the materialized-task id is recorded as
// completed on the given day.
func (s *AppState) IsCompleted(dayKey, instanceID string) bool {
	for _, id := range s.Completions[dayKey] {
		if id == instanceID {
			return true
		}
	}
	return false
}

// MarkCompleted records a materialized-task id for the day. Idempotent.
func (s *AppState) MarkCompleted(dayKey, instanceID string) {
	if s.IsCompleted(dayKey, instanceID) {
		return
	}
	if s.Completions == nil {
		s.Completions = map[string][]string{}
	}
	s.Completions[dayKey] = append(s.Completions[dayKey], instanceID)
}
