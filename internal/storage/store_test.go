package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, dir
}

func TestLoadMissingFileIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load err=%v, want ErrNotFound", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	state := NewAppState("2024-01-01")
	state.Tasks = append(state.Tasks, OneOffTask{
		ID:     "t1",
		Title:  "Water the plants",
		Time:   TimeOfDay{Hour: 9, Minute: 30},
		DayKey: "2024-01-01",
	})
	state.MarkCompleted("2024-01-01", "inst-1")
	if err := store.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if state.WriteStamp == "" {
		t.Fatalf("Save left an empty write stamp")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SchemaVersion != SchemaVersion {
		t.Fatalf("schema=%d, want %d", loaded.SchemaVersion, SchemaVersion)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].Title != "Water the plants" {
		t.Fatalf("tasks did not round-trip: %+v", loaded.Tasks)
	}
	if !loaded.IsCompleted("2024-01-01", "inst-1") {
		t.Fatalf("completion set did not round-trip")
	}
	if loaded.WriteStamp != state.WriteStamp {
		t.Fatalf("stamp=%q, want %q", loaded.WriteStamp, state.WriteStamp)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store, dir := newTestStore(t)
	if err := os.WriteFile(filepath.Join(dir, "appstate.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load err=%v, want ErrCorrupt", err)
	}
}

func TestLoadRejectsFutureSchema(t *testing.T) {
	store, dir := newTestStore(t)
	if err := os.WriteFile(filepath.Join(dir, "appstate.json"), []byte(`{"schemaVersion":99,"dayKey":"2024-01-01"}`), 0o644); err != nil {
		t.Fatalf("write state: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load err=%v, want ErrCorrupt", err)
	}
}

func TestLoadMigratesOldSchema(t *testing.T) {
	store, dir := newTestStore(t)
	v1 := `{"schemaVersion":1,"dayKey":"2024-01-01","tasks":[],"pet":{"stageIndex":0,"stageXP":0}}`
	if err := os.WriteFile(filepath.Join(dir, "appstate.json"), []byte(v1), 0o644); err != nil {
		t.Fatalf("write v1 state: %v", err)
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.SchemaVersion != SchemaVersion {
		t.Fatalf("schema=%d, want %d", state.SchemaVersion, SchemaVersion)
	}
	if state.Completions == nil {
		t.Fatalf("migration left Completions nil")
	}
	if state.Series == nil || state.Overrides == nil {
		t.Fatalf("migration left series/overrides nil")
	}
}

func TestSaveDetectsStaleStamp(t *testing.T) {
	store, dir := newTestStore(t)

	first := NewAppState("2024-01-01")
	if err := store.Save(first); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	// Two handles load the same generation, then both try to save.
	sibling, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore sibling: %v", err)
	}
	mine, err := store.Load()
	if err != nil {
		t.Fatalf("load mine: %v", err)
	}
	theirs, err := sibling.Load()
	if err != nil {
		t.Fatalf("load theirs: %v", err)
	}

	if err := sibling.Save(theirs); err != nil {
		t.Fatalf("sibling save: %v", err)
	}
	if err := store.Save(mine); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale save err=%v, want ErrConflict", err)
	}
}

func TestStampReadsDisk(t *testing.T) {
	store, _ := newTestStore(t)
	if got := store.Stamp(); got != "" {
		t.Fatalf("Stamp on empty store=%q, want empty", got)
	}
	state := NewAppState("2024-01-01")
	if err := store.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := store.Stamp(); got != state.WriteStamp {
		t.Fatalf("Stamp=%q, want %q", got, state.WriteStamp)
	}
}

func TestEffectiveOverrideLastWins(t *testing.T) {
	state := NewAppState("2024-01-01")
	title := "First"
	state.Overrides = append(state.Overrides, TaskInstanceOverride{
		ID: "o1", SeriesID: "s1", DayKey: "2024-01-01", Title: &title,
	})
	tod := TimeOfDay{Hour: 8, Minute: 0}
	state.PutOverride(TaskInstanceOverride{
		ID: "o2", SeriesID: "s1", DayKey: "2024-01-01", Time: &tod,
	})

	o := state.EffectiveOverride("s1", "2024-01-01")
	if o == nil || o.ID != "o2" {
		t.Fatalf("effective override=%+v, want o2", o)
	}
	if len(state.Overrides) != 1 {
		t.Fatalf("overrides=%d, want 1 (put replaces the pair)", len(state.Overrides))
	}
	if state.EffectiveOverride("s1", "2024-01-02") != nil {
		t.Fatalf("override leaked onto another day")
	}
}

func TestMarkCompletedIdempotent(t *testing.T) {
	state := NewAppState("2024-01-01")
	state.MarkCompleted("2024-01-01", "a")
	state.MarkCompleted("2024-01-01", "a")
	if got := len(state.Completions["2024-01-01"]); got != 1 {
		t.Fatalf("completions=%d, want 1", got)
	}
}

func TestGraceDefaultAndOverride(t *testing.T) {
	state := NewAppState("2024-01-01")
	if got := state.Grace(); got != DefaultGraceMinutes {
		t.Fatalf("default grace=%d, want %d", got, DefaultGraceMinutes)
	}
	g := 10
	state.GraceMinutes = &g
	if got := state.Grace(); got != 10 {
		t.Fatalf("grace=%d, want 10", got)
	}
}
