package engine

import (
	"github.com/google/uuid"

	"petprogress/internal/storage"
)

// OriginKind tags where a materialized occurrence came from.
type OriginKind string

const (
	OriginOneOff OriginKind = "one-off"
	OriginSeries OriginKind = "series"
)

// MaterializedTask is the concrete occurrence of a task on one day. Derived,
// never persisted; produced fresh on every materialization.
type MaterializedTask struct {
	ID        string
	Origin    OriginKind
	OriginID  string
	Title     string
	Time      storage.TimeOfDay
	Completed bool
}

// OriginTag renders the origin in its wire form, e.g. "series:abc".
func (m MaterializedTask) OriginTag() string {
	return string(m.Origin) + ":" + m.OriginID
}

// nsInstanceV1 is the fixed namespace for series-occurrence instance ids.
// Changing it (or the id input format) is a schema change: persisted
// completion sets are keyed by these ids.
var nsInstanceV1 = uuid.MustParse("6f9c2e1d-8b54-4a07-9c35-d41e7a20f3b9")

// InstanceID derives the stable id for a series occurrence on a day. The same
// (series, day) pair yields the same id across processes and restarts, which
// is what lets the scheduler and out-of-process callers agree on completion
// lookups.
func InstanceID(seriesID, dayKey string) string {
	return uuid.NewSHA1(nsInstanceV1, []byte(seriesID+"|"+dayKey)).String()
}
