package engine

import (
	"errors"
	"testing"

	"petprogress/internal/storage"
	"petprogress/internal/timekey"
)

// 2024-01-01 was a Monday (weekday 2, Sunday=1).
const monday = "2024-01-01"

func catalogState() *storage.AppState {
	state := storage.NewAppState(monday)
	state.Tasks = []storage.OneOffTask{
		{ID: "one-1", Title: "Dentist", Time: storage.TimeOfDay{Hour: 14, Minute: 0}, DayKey: monday},
		{ID: "one-2", Title: "Other day", Time: storage.TimeOfDay{Hour: 9, Minute: 0}, DayKey: "2024-01-02"},
	}
	state.Series = []storage.TaskSeries{
		{ID: "run", Title: "Morning run", Weekdays: []int{2, 4}, Time: storage.TimeOfDay{Hour: 7, Minute: 0}, Active: true},
		{ID: "read", Title: "Read", Weekdays: []int{2}, Time: storage.TimeOfDay{Hour: 21, Minute: 30}, Active: true},
		{ID: "off", Title: "Disabled", Weekdays: []int{2}, Time: storage.TimeOfDay{Hour: 8, Minute: 0}, Active: false},
		{ID: "weekend", Title: "Weekend only", Weekdays: []int{1, 7}, Time: storage.TimeOfDay{Hour: 10, Minute: 0}, Active: true},
	}
	return state
}

func TestMaterializeFiltersAndSorts(t *testing.T) {
	occ, err := Materialize(monday, catalogState())
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(occ) != 3 {
		t.Fatalf("got %d occurrences, want 3: %+v", len(occ), occ)
	}
	if occ[0].Title != "Morning run" || occ[1].Title != "Dentist" || occ[2].Title != "Read" {
		t.Fatalf("order=%q,%q,%q, want run/dentist/read", occ[0].Title, occ[1].Title, occ[2].Title)
	}
	if occ[1].Origin != OriginOneOff || occ[0].Origin != OriginSeries {
		t.Fatalf("origins wrong: %+v", occ)
	}
}

func TestMaterializeIsDeterministic(t *testing.T) {
	state := catalogState()
	a, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	b, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize again: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("occurrence %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestMaterializeTieKeepsInsertionOrder(t *testing.T) {
	state := storage.NewAppState(monday)
	tod := storage.TimeOfDay{Hour: 9, Minute: 0}
	state.Tasks = []storage.OneOffTask{{ID: "one", Title: "One-off", Time: tod, DayKey: monday}}
	state.Series = []storage.TaskSeries{
		{ID: "a", Title: "Series A", Weekdays: []int{2}, Time: tod, Active: true},
		{ID: "b", Title: "Series B", Weekdays: []int{2}, Time: tod, Active: true},
	}

	occ, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if occ[0].Title != "One-off" || occ[1].Title != "Series A" || occ[2].Title != "Series B" {
		t.Fatalf("tie order=%q,%q,%q", occ[0].Title, occ[1].Title, occ[2].Title)
	}
}

func TestMaterializeAppliesOverrides(t *testing.T) {
	state := catalogState()
	title := "Evening run"
	tod := storage.TimeOfDay{Hour: 18, Minute: 15}
	state.Overrides = []storage.TaskInstanceOverride{
		{ID: "o1", SeriesID: "run", DayKey: monday, Title: &title, Time: &tod},
		{ID: "o2", SeriesID: "read", DayKey: monday, Deleted: true},
	}

	occ, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(occ) != 2 {
		t.Fatalf("got %d occurrences, want 2 (read skipped): %+v", len(occ), occ)
	}
	run := occ[1]
	if run.Title != "Evening run" || run.Time != tod {
		t.Fatalf("override not applied: %+v", run)
	}
	// The instance id tracks (series, day), not the override.
	if run.ID != InstanceID("run", monday) {
		t.Fatalf("id=%q, want stable instance id", run.ID)
	}
}

func TestMaterializeOverrideOnOtherDayIgnored(t *testing.T) {
	state := catalogState()
	state.Overrides = []storage.TaskInstanceOverride{
		{ID: "o1", SeriesID: "run", DayKey: "2024-01-08", Deleted: true},
	}

	occ, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(occ) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(occ))
	}
}

func TestMaterializeReflectsCompletions(t *testing.T) {
	state := catalogState()
	state.MarkCompleted(monday, InstanceID("run", monday))

	occ, err := Materialize(monday, state)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !occ[0].Completed {
		t.Fatalf("series completion not reflected: %+v", occ[0])
	}
	if next := NextIncomplete(occ); next == nil || next.Title != "Dentist" {
		t.Fatalf("NextIncomplete=%+v, want Dentist", next)
	}
}

func TestMaterializeInvalidDayKey(t *testing.T) {
	_, err := Materialize("2024-13-99", catalogState())
	var invalid timekey.InvalidDayKeyError
	if !errors.As(err, &invalid) {
		t.Fatalf("err=%v, want InvalidDayKeyError", err)
	}
}

func TestInstanceIDStable(t *testing.T) {
	a := InstanceID("run", monday)
	b := InstanceID("run", monday)
	if a != b {
		t.Fatalf("ids differ across calls: %q vs %q", a, b)
	}
	if a == InstanceID("run", "2024-01-08") || a == InstanceID("read", monday) {
		t.Fatalf("distinct (series, day) pairs collided")
	}
	// Pinned: persisted completion sets are keyed by this exact derivation,
	// so changing it would orphan existing data.
	if want := "c3a32fca-d403-5877-8d5e-5d9740d6e922"; a != want {
		t.Fatalf("InstanceID=%q, want %q", a, want)
	}
}
