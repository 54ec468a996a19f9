// Package storage persists the PetProgress aggregate. The aggregate lives in
// a single JSON file shared by the main app and any out-of-process extension;
// a small SQLite journal sits next to it for completion history.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const stateFileName = "appstate.json"

// DefaultDataDir returns the default PetProgress data location.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".petprogress"), nil
}

// Store is a handle to the shared state file. One handle serializes access
// within its process; across processes the write stamp carried by the state
// detects lost-update races, surfaced as ErrConflict.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store over dir/appstate.json, creating dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, stateFileName)}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the aggregate, migrating older schema versions in
// place. Returns ErrNotFound when no file exists and ErrCorrupt when the file
// does not decode.
func (s *Store) Load() (*AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (*AppState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if state.SchemaVersion <= 0 || state.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema version %d", ErrCorrupt, state.SchemaVersion)
	}

	migrate(&state)
	return &state, nil
}

// migrate upgrades older aggregates in place and bumps the version. v1 files
// predate series/overrides; v2 predate grace minutes and reset time. Missing
// collections are initialized so callers never see nil maps.
func migrate(state *AppState) {
	if state.Completions == nil {
		state.Completions = map[string][]string{}
	}
	if state.SchemaVersion < 2 {
		if state.Series == nil {
			state.Series = []TaskSeries{}
		}
		if state.Overrides == nil {
			state.Overrides = []TaskInstanceOverride{}
		}
	}
	if state.SchemaVersion < 3 {
		state.GraceMinutes = nil
		state.ResetTime = nil
	}
	state.SchemaVersion = SchemaVersion
}

// Save atomically replaces the state file: serialize to a temp file in the
// same directory, then rename over the target so a reader never observes a
// partial write. Before writing it verifies the on-disk write stamp still
// matches the stamp the aggregate was loaded with and fails with ErrConflict
// otherwise. The saved state carries a fresh stamp.
func (s *Store) Save(state *AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStampLocked(state.WriteStamp); err != nil {
		return err
	}

	state.SchemaVersion = SchemaVersion
	state.WriteStamp = uuid.NewString()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".appstate-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Stamp returns the write stamp currently on disk, or "" when no readable
// stamp exists. Used when replacing a corrupt file so the save is not
// rejected as a conflict.
func (s *Store) Stamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var current struct {
		WriteStamp string `json:"writeStamp"`
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return ""
	}
	return current.WriteStamp
}

// checkStampLocked compares the stamp the caller loaded against what is on
// disk now. A missing or undecodable file never blocks a save; first writes
// and corrupt-state recovery must both be able to proceed.
func (s *Store) checkStampLocked(loadedStamp string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read state for stamp check: %w", err)
	}
	var current struct {
		WriteStamp string `json:"writeStamp"`
	}
	if err := json.Unmarshal(data, &current); err != nil {
		return nil
	}
	if current.WriteStamp != loadedStamp {
		return fmt.Errorf("%w: stamp %q is stale", ErrConflict, loadedStamp)
	}
	return nil
}
