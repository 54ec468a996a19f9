package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStages(t *testing.T) {
	stages, err := DefaultStages()
	if err != nil {
		t.Fatalf("DefaultStages: %v", err)
	}
	if stages.Count() < 2 {
		t.Fatalf("Count=%d, want at least 2", stages.Count())
	}
	if got := stages.Stage(0).Name; got != "Egg" {
		t.Fatalf("stage 0 name=%q, want Egg", got)
	}
	if stages.Threshold(0) != 0 {
		t.Fatalf("stage 0 threshold=%d, want 0", stages.Threshold(0))
	}
	for i := 1; i <= stages.Last(); i++ {
		if stages.Threshold(i) <= stages.Threshold(i-1) {
			t.Fatalf("thresholds not ascending at stage %d", i)
		}
	}
}

func TestParseStagesRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"empty list":         `{"stages":[]}`,
		"index gap":          `{"stages":[{"index":0,"name":"A","threshold":0},{"index":2,"name":"B","threshold":10}]}`,
		"negative threshold": `{"stages":[{"index":0,"name":"A","threshold":-1}]}`,
		"missing name":       `{"stages":[{"index":0,"threshold":0}]}`,
		"not json":           `{nope`,
	}
	for name, payload := range cases {
		_, err := parseStages([]byte(payload))
		if err == nil {
			t.Fatalf("%s: parseStages succeeded, want error", name)
		}
		var invalid InvalidStageConfigError
		if !errors.As(err, &invalid) {
			t.Fatalf("%s: err=%v, want InvalidStageConfigError", name, err)
		}
	}
}

func TestLoadStagesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stages.json")
	payload := `{"stages":[
		{"index":0,"name":"Seed","threshold":0},
		{"index":1,"name":"Bloom","threshold":5}
	]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stages, err := LoadStages(path)
	if err != nil {
		t.Fatalf("LoadStages: %v", err)
	}
	if stages.Count() != 2 || stages.Stage(1).Name != "Bloom" {
		t.Fatalf("loaded table wrong: count=%d", stages.Count())
	}

	if _, err := LoadStages(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("LoadStages(missing) succeeded, want error")
	}
}

func TestCheckIndex(t *testing.T) {
	stages := testStages(t)
	if err := stages.CheckIndex(0); err != nil {
		t.Fatalf("CheckIndex(0): %v", err)
	}
	if err := stages.CheckIndex(stages.Last()); err != nil {
		t.Fatalf("CheckIndex(last): %v", err)
	}
	if err := stages.CheckIndex(-1); err == nil {
		t.Fatalf("CheckIndex(-1) succeeded, want error")
	}
	if err := stages.CheckIndex(stages.Count()); err == nil {
		t.Fatalf("CheckIndex(count) succeeded, want error")
	}
}
