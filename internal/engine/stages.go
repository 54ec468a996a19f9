package engine

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

// Stage is one step of the pet's progression. Threshold is the XP required to
// reach this stage from the previous one; the final stage's threshold acts as
// a ceiling and is never compared against.
type Stage struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Asset     string `json:"asset"`
}

// InvalidStageConfigError is a fatal configuration error, detected at load
// time rather than during a transition.
type InvalidStageConfigError struct {
	Reason string
}

func (e InvalidStageConfigError) Error() string {
	return "invalid stage config: " + e.Reason
}

// Stages is the immutable, validated stage table.
type Stages struct {
	list []Stage
}

//go:embed stages.json
var defaultStagesJSON []byte

type stageFile struct {
	Stages []Stage `json:"stages"`
}

// DefaultStages loads the embedded stage table.
func DefaultStages() (*Stages, error) {
	return parseStages(defaultStagesJSON)
}

// LoadStages reads a stage table from path, or the embedded default when path
// is empty.
func LoadStages(path string) (*Stages, error) {
	if path == "" {
		return DefaultStages()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage config: %w", err)
	}
	return parseStages(data)
}

func parseStages(data []byte) (*Stages, error) {
	var f stageFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, InvalidStageConfigError{Reason: err.Error()}
	}
	if len(f.Stages) == 0 {
		return nil, InvalidStageConfigError{Reason: "no stages defined"}
	}
	for i, st := range f.Stages {
		if st.Index != i {
			return nil, InvalidStageConfigError{Reason: fmt.Sprintf("stage %d has index %d", i, st.Index)}
		}
		if st.Threshold < 0 {
			return nil, InvalidStageConfigError{Reason: fmt.Sprintf("stage %d has negative threshold", i)}
		}
		if st.Name == "" {
			return nil, InvalidStageConfigError{Reason: fmt.Sprintf("stage %d has no name", i)}
		}
	}
	return &Stages{list: f.Stages}, nil
}

// Count returns the number of stages.
func (s *Stages) Count() int { return len(s.list) }

// Last returns the top stage index.
func (s *Stages) Last() int { return len(s.list) - 1 }

// Threshold returns the XP required to reach stage i from stage i-1.
func (s *Stages) Threshold(i int) int {
	return s.list[i].Threshold
}

// Stage returns the stage at index i, which must be in range.
func (s *Stages) Stage(i int) Stage {
	return s.list[i]
}

// CheckIndex validates a persisted stage index against the table.
func (s *Stages) CheckIndex(i int) error {
	if i < 0 || i >= len(s.list) {
		return InvalidStageConfigError{Reason: fmt.Sprintf("stage index %d out of range [0,%d]", i, s.Last())}
	}
	return nil
}
