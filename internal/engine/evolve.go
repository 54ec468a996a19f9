package engine

import "petprogress/internal/storage"

// Fixed-delta evolution rules. The pet advances one stage at a time when its
// stage XP crosses the next threshold and drops one stage at a time when XP
// goes negative; stage 0 floors XP at zero.

const (
	xpOnTime     = 2
	xpLate       = 1
	xpMiss       = 2
	xpCloseout   = 3
	closeoutHigh = 0.8
	closeoutLow  = 0.4
)

// Evolution applies transitions to a PetState against a validated stage
// table. It holds no state of its own.
type Evolution struct {
	stages *Stages
}

func NewEvolution(stages *Stages) *Evolution {
	return &Evolution{stages: stages}
}

// OnCheck credits a completion: +2 on time, +1 late.
func (e *Evolution) OnCheck(pet *storage.PetState, onTime bool) int {
	delta := xpLate
	if onTime {
		delta = xpOnTime
	}
	pet.StageXP += delta
	e.evolveIfNeeded(pet)
	return delta
}

// OnMiss charges a missed occurrence.
func (e *Evolution) OnMiss(pet *storage.PetState) int {
	pet.StageXP -= xpMiss
	e.deEvolveIfNeeded(pet)
	return -xpMiss
}

// OnDailyCloseout applies the end-of-day rate rule and stamps the closeout
// day key unconditionally.
func (e *Evolution) OnDailyCloseout(pet *storage.PetState, completionRate float64, dayKey string) int {
	delta := 0
	switch {
	case completionRate >= closeoutHigh:
		delta = xpCloseout
		pet.StageXP += delta
		e.evolveIfNeeded(pet)
	case completionRate < closeoutLow:
		delta = -xpCloseout
		pet.StageXP += delta
		e.deEvolveIfNeeded(pet)
	}
	pet.LastCloseoutDayKey = dayKey
	return delta
}

// evolveIfNeeded advances at most one stage per call, even if XP overshoots
// two thresholds, and resets XP on advancement.
func (e *Evolution) evolveIfNeeded(pet *storage.PetState) {
	if pet.StageIndex >= e.stages.Last() {
		return
	}
	next := e.stages.Threshold(pet.StageIndex + 1)
	if next > 0 && pet.StageXP >= next {
		pet.StageIndex++
		pet.StageXP = 0
	}
}

// deEvolveIfNeeded steps down one stage when XP is negative, landing just
// under the threshold of the stage it fell back to. At stage 0 it clamps XP
// to the floor instead.
func (e *Evolution) deEvolveIfNeeded(pet *storage.PetState) {
	if pet.StageXP >= 0 {
		return
	}
	if pet.StageIndex == 0 {
		pet.StageXP = 0
		return
	}
	pet.StageIndex--
	xp := e.stages.Threshold(pet.StageIndex) - 1
	if xp < 0 {
		xp = 0
	}
	pet.StageXP = xp
}
