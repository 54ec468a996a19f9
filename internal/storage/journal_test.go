package storage

import (
	"context"
	"testing"
	"time"
)

func TestJournalAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	journal, err := OpenJournal(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	defer journal.Close()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := journal.Append(ctx, JournalEntry{
			Kind:       JournalKindCheck,
			TaskID:     "t1",
			Title:      "Stretch",
			DayKey:     "2024-01-01",
			OnTime:     i == 0,
			XPDelta:    2,
			StageAfter: 0,
			RecordedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}
	err = journal.Append(ctx, JournalEntry{
		Kind:       JournalKindCloseout,
		DayKey:     "2024-01-01",
		XPDelta:    3,
		StageAfter: 1,
		RecordedAt: base.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Append closeout: %v", err)
	}

	entries, err := journal.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent=%d entries, want 2", len(entries))
	}
	if entries[0].Kind != JournalKindCloseout {
		t.Fatalf("newest kind=%q, want closeout", entries[0].Kind)
	}
	if entries[1].Kind != JournalKindCheck || entries[1].OnTime {
		t.Fatalf("second entry=%+v, want a late check", entries[1])
	}

	n, err := journal.CountByDay(ctx, "2024-01-01")
	if err != nil {
		t.Fatalf("CountByDay: %v", err)
	}
	if n != 3 {
		t.Fatalf("CountByDay=%d, want 3 (closeouts excluded)", n)
	}
}

func TestOpenJournalCreatesDataDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir() + "/nested/data"
	journal, err := OpenJournal(ctx, dir)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	if err := journal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
