package engine

import (
	"testing"

	"petprogress/internal/storage"
)

func testStages(t *testing.T) *Stages {
	t.Helper()
	stages, err := parseStages([]byte(`{"stages":[
		{"index":0,"name":"Egg","threshold":0},
		{"index":1,"name":"Hatchling","threshold":10},
		{"index":2,"name":"Sprout","threshold":20}
	]}`))
	if err != nil {
		t.Fatalf("parseStages: %v", err)
	}
	return stages
}

func TestOnCheckDeltas(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{}
	if got := evo.OnCheck(&pet, true); got != 2 {
		t.Fatalf("on-time delta=%d, want 2", got)
	}
	if got := evo.OnCheck(&pet, false); got != 1 {
		t.Fatalf("late delta=%d, want 1", got)
	}
	if pet.StageXP != 3 || pet.StageIndex != 0 {
		t.Fatalf("pet=%+v, want stage 0 xp 3", pet)
	}
}

func TestOnCheckEvolvesAtThreshold(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 0, StageXP: 9}
	evo.OnCheck(&pet, true)
	if pet.StageIndex != 1 || pet.StageXP != 0 {
		t.Fatalf("pet=%+v, want stage 1 xp 0", pet)
	}
}

func TestEvolveStepsAtMostOneStage(t *testing.T) {
	evo := NewEvolution(testStages(t))

	// XP overshoots far past the next threshold; only one stage advances and
	// the overshoot is discarded.
	pet := storage.PetState{StageIndex: 0, StageXP: 18}
	evo.OnCheck(&pet, true)
	if pet.StageIndex != 1 || pet.StageXP != 0 {
		t.Fatalf("pet=%+v, want stage 1 xp 0", pet)
	}
}

func TestNoEvolvePastTopStage(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 2, StageXP: 99}
	evo.OnCheck(&pet, true)
	if pet.StageIndex != 2 {
		t.Fatalf("stage=%d, want 2 (top stage is a ceiling)", pet.StageIndex)
	}
	if pet.StageXP != 101 {
		t.Fatalf("xp=%d, want 101", pet.StageXP)
	}
}

func TestOnMissDeEvolves(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 1, StageXP: 1}
	if got := evo.OnMiss(&pet); got != -2 {
		t.Fatalf("miss delta=%d, want -2", got)
	}
	// Falls back to stage 0; threshold(0)-1 is negative, so XP clamps to 0.
	if pet.StageIndex != 0 || pet.StageXP != 0 {
		t.Fatalf("pet=%+v, want stage 0 xp 0", pet)
	}
}

func TestOnMissLandsJustUnderThreshold(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 2, StageXP: 0}
	evo.OnMiss(&pet)
	if pet.StageIndex != 1 || pet.StageXP != 9 {
		t.Fatalf("pet=%+v, want stage 1 xp 9", pet)
	}
}

func TestStageZeroFloorsXP(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 0, StageXP: 1}
	evo.OnMiss(&pet)
	if pet.StageIndex != 0 || pet.StageXP != 0 {
		t.Fatalf("pet=%+v, want stage 0 xp 0", pet)
	}
}

func TestOnDailyCloseoutRateRule(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 1, StageXP: 5}
	if got := evo.OnDailyCloseout(&pet, 0.85, "2024-01-01"); got != 3 {
		t.Fatalf("high-rate delta=%d, want 3", got)
	}
	if pet.StageXP != 8 || pet.LastCloseoutDayKey != "2024-01-01" {
		t.Fatalf("pet=%+v, want xp 8 stamped 2024-01-01", pet)
	}

	if got := evo.OnDailyCloseout(&pet, 0.5, "2024-01-02"); got != 0 {
		t.Fatalf("mid-rate delta=%d, want 0", got)
	}
	if pet.LastCloseoutDayKey != "2024-01-02" {
		t.Fatalf("mid-rate closeout did not stamp the day key")
	}

	if got := evo.OnDailyCloseout(&pet, 0.2, "2024-01-03"); got != -3 {
		t.Fatalf("low-rate delta=%d, want -3", got)
	}
	if pet.StageIndex != 1 || pet.StageXP != 5 {
		t.Fatalf("pet=%+v, want stage 1 xp 5", pet)
	}
}

func TestCloseoutBoundaryRates(t *testing.T) {
	evo := NewEvolution(testStages(t))

	pet := storage.PetState{StageIndex: 1, StageXP: 5}
	if got := evo.OnDailyCloseout(&pet, 0.8, "2024-01-01"); got != 3 {
		t.Fatalf("rate 0.8 delta=%d, want 3 (inclusive)", got)
	}
	if got := evo.OnDailyCloseout(&pet, 0.4, "2024-01-02"); got != 0 {
		t.Fatalf("rate 0.4 delta=%d, want 0 (exclusive)", got)
	}
}
